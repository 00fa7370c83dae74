package rules

import (
	"fmt"
	"strings"

	"github.com/roach88/overproofed/internal/recipe"
	"github.com/roach88/overproofed/internal/values"
)

// Family names the structural rule an equation was derived from.
type Family int

const (
	FamilyFallback Family = iota
	FamilyWeightSum
	FamilyBakersSum
	FamilyPercentOfFlour
	FamilyWeightSplit
	FamilyCrossMixWeight
	FamilyCrossMixPercent
	FamilyCrossMixShare
)

var familyNames = [...]string{
	FamilyFallback:        "fallback",
	FamilyWeightSum:       "weight-sum",
	FamilyBakersSum:       "bakers-sum",
	FamilyPercentOfFlour:  "percent-of-flour",
	FamilyWeightSplit:     "weight-split",
	FamilyCrossMixWeight:  "cross-mix-weight",
	FamilyCrossMixPercent: "cross-mix-percent",
	FamilyCrossMixShare:   "cross-mix-share",
}

func (f Family) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return fmt.Sprintf("family(%d)", int(f))
	}
	return familyNames[f]
}

// DoughMix is the Fact.Mix value for equations about the dough.
const DoughMix = -1

// Fact is a generated equation together with where it came from.
type Fact struct {
	Equation Equation
	Family   Family
	// Mix is DoughMix or the index of a sub-mix.
	Mix int
	// Row is the row the equation is about.
	Row recipe.RowKey
}

// Where renders the fact's location, e.g. "dough.flour" or "mix[0].flours[1]".
func (f Fact) Where() string {
	if f.Mix == DoughMix {
		return "dough." + f.Row.String()
	}
	return fmt.Sprintf("mix[%d].%s", f.Mix, f.Row)
}

// Generate returns every equation implied by the shape of r: the fallback
// equations first, then the structural ones. The values in the store are
// never consulted.
func Generate(r recipe.Recipe) []Fact {
	return append(Fallback(r), ForRecipe(r)...)
}

// Fallback returns one TotalFlourBakers100 per mix, dough first.
func Fallback(r recipe.Recipe) []Fact {
	facts := make([]Fact, 0, 1+len(r.Mixes))
	for i, m := range r.AllMixes() {
		facts = append(facts, Fact{
			Equation: TotalFlourBakers100{Slot: recipe.AmountsOf(m.Flour).Bakers},
			Family:   FamilyFallback,
			Mix:      i - 1,
			Row:      recipe.KeyFlour,
		})
	}
	return facts
}

// ForRecipe returns the per-mix equations of the dough and each sub-mix in
// order, followed by the cross-mix equations.
func ForRecipe(r recipe.Recipe) []Fact {
	var facts []Fact
	for i, m := range r.AllMixes() {
		facts = append(facts, forMix(m, i-1)...)
	}
	return append(facts, crossMix(r)...)
}

type generator struct {
	mix   int
	facts []Fact
}

func (g *generator) add(family Family, row recipe.RowKey, eq Equation) {
	g.facts = append(g.facts, Fact{Equation: eq, Family: family, Mix: g.mix, Row: row})
}

func forMix(m recipe.Mix, mix int) []Fact {
	g := &generator{mix: mix}

	total := recipe.AmountsOf(m.Total)
	flour := recipe.AmountsOf(m.Flour)
	nonflour := recipe.AmountsOf(m.NonFlour)
	flours := amounts(m.PresentFlours())
	nonflours := amounts(m.PresentNonFlours())

	g.add(FamilyWeightSum, recipe.KeyTotal, Sum{Sum: total.Weight, Addends: []values.Slot{flour.Weight, nonflour.Weight}})
	g.add(FamilyWeightSum, recipe.KeyFlour, Sum{Sum: flour.Weight, Addends: weights(flours)})
	g.add(FamilyWeightSum, recipe.KeyNonFlour, Sum{Sum: nonflour.Weight, Addends: weights(nonflours)})

	g.add(FamilyBakersSum, recipe.KeyTotal, Sum{Sum: total.Bakers, Addends: []values.Slot{flour.Bakers, nonflour.Bakers}})
	g.add(FamilyBakersSum, recipe.KeyFlour, Sum{Sum: flour.Bakers, Addends: bakers(flours)})
	g.add(FamilyBakersSum, recipe.KeyNonFlour, Sum{Sum: nonflour.Bakers, Addends: bakers(nonflours)})

	rows := presentRows(m)

	for _, row := range rows {
		a := recipe.AmountsOf(row.item)
		g.add(FamilyPercentOfFlour, row.key, PercentOf{Product: a.Weight, Pct: a.Bakers, Of: flour.Weight})
	}

	for _, row := range rows {
		w, ok := recipe.AsWithMixes(row.item)
		if !ok {
			continue
		}
		g.add(FamilyWeightSplit, row.key, Sum{Sum: w.Weight, Addends: []values.Slot{w.WeightInMixes, w.WeightLessMixes}})
		g.add(FamilyWeightSplit, row.key, PercentOf{Product: w.WeightInMixes, Pct: w.PercentInMixes, Of: w.Weight})
		g.add(FamilyWeightSplit, row.key, PercentOf{Product: w.WeightLessMixes, Pct: w.PercentLessMixes, Of: w.Weight})
	}

	return g.facts
}

// crossMix ties every dough row to the sub-mix rows at the same position.
//
// Matching is positional only. A dough row with no counterpart still gets
// its two sums, with no addends, which fixes its in-mixes weight and
// percentage to zero.
func crossMix(r recipe.Recipe) []Fact {
	g := &generator{mix: DoughMix}

	for _, key := range r.Dough.RowKeys() {
		it, ok := r.Dough.Row(key)
		if !ok {
			continue
		}
		t, ok := recipe.AsWithMixes(it)
		if !ok {
			continue
		}

		var inWeights, inPercents []values.Slot
		var shares []Fact
		for i, m := range r.Mixes {
			mit, ok := m.Row(key)
			if !ok {
				continue
			}
			in, ok := recipe.AsInMix(mit)
			if !ok {
				continue
			}
			inWeights = append(inWeights, in.Weight)
			inPercents = append(inPercents, in.PercentOfTotal)
			shares = append(shares, Fact{
				Equation: PercentOf{Product: in.Weight, Pct: in.PercentOfTotal, Of: t.Weight},
				Family:   FamilyCrossMixShare,
				Mix:      i,
				Row:      key,
			})
		}

		g.add(FamilyCrossMixWeight, key, Sum{Sum: t.WeightInMixes, Addends: inWeights})
		g.add(FamilyCrossMixPercent, key, Sum{Sum: t.PercentInMixes, Addends: inPercents})
		g.facts = append(g.facts, shares...)
	}

	return g.facts
}

type keyedItem struct {
	key  recipe.RowKey
	item recipe.Item
}

// presentRows returns the mix's rows with their keys in Items order.
func presentRows(m recipe.Mix) []keyedItem {
	var out []keyedItem
	for _, key := range m.RowKeys() {
		if it, ok := m.Row(key); ok {
			out = append(out, keyedItem{key: key, item: it})
		}
	}
	return out
}

func amounts(items []recipe.Item) []recipe.Amounts {
	out := make([]recipe.Amounts, len(items))
	for i, it := range items {
		out[i] = recipe.AmountsOf(it)
	}
	return out
}

func weights(as []recipe.Amounts) []values.Slot {
	out := make([]values.Slot, len(as))
	for i, a := range as {
		out[i] = a.Weight
	}
	return out
}

func bakers(as []recipe.Amounts) []values.Slot {
	out := make([]values.Slot, len(as))
	for i, a := range as {
		out[i] = a.Bakers
	}
	return out
}

// Format renders one fact per line as "index<TAB>family<TAB>where<TAB>equation".
func Format(facts []Fact) string {
	var b strings.Builder
	for i, f := range facts {
		fmt.Fprintf(&b, "%d\t%s\t%s\t%s\n", i, f.Family, f.Where(), f.Equation)
	}
	return b.String()
}

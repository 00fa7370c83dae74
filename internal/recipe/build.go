package recipe

import "github.com/roach88/overproofed/internal/values"

// NewWithMixes allocates the six slots of a dough-level item.
func NewWithMixes(v *values.Values) WithMixes {
	s := v.Alloc(6)
	return WithMixes{
		Amounts:          Amounts{Weight: s[0], Bakers: s[1]},
		WeightInMixes:    s[2],
		WeightLessMixes:  s[3],
		PercentInMixes:   s[4],
		PercentLessMixes: s[5],
	}
}

// NewInMix allocates the three slots of a sub-mix item.
func NewInMix(v *values.Values) InMix {
	s := v.Alloc(3)
	return InMix{
		Amounts:        Amounts{Weight: s[0], Bakers: s[1]},
		PercentOfTotal: s[2],
	}
}

// MinimalRecipe allocates a dough with only its aggregate rows and no
// sub-mixes.
func MinimalRecipe(v *values.Values) Recipe {
	return Recipe{
		Dough: Mix{
			Total:    NewWithMixes(v),
			Flour:    NewWithMixes(v),
			NonFlour: NewWithMixes(v),
		},
	}
}

// MinimalMix allocates a sub-mix with only its aggregate rows.
func MinimalMix(v *values.Values) Mix {
	return Mix{
		Total:    NewInMix(v),
		Flour:    NewInMix(v),
		NonFlour: NewInMix(v),
	}
}

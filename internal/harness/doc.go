// Package harness runs recipe scenarios: it builds a recipe from a scenario
// file, solves it and checks the solved values against expectations.
//
// # Scenario Format
//
// Scenarios are YAML or CUE files. Both are validated against the same
// embedded CUE schema.
//
//	name: funny_pizza
//	description: "Rye starter pizza dough"
//	capacity: 256               # optional value store capacity
//	dough:
//	  total: { weight: 0.690 }
//	  flour: { bakers: 1.0 }
//	  flours:
//	    - name: rye
//	      set: { bakers: 0.15 }
//	  nonflours:
//	    - name: water
//	      set: { bakers: 0.75 }
//	mixes:
//	  - name: starter
//	    flours:
//	      - name: rye
//	        set: { percent_in_mixes: 1.0 }
//	expect:
//	  - row: dough.flour
//	    field: weight
//	    value: 0.388
//	  - row: starter.water
//	    field: weight
//	    unsolved: true
//	unsolved_pairs: 0
//	inconsistent: false
//
// Rows of a sub-mix are matched to dough rows by name. A dough row with no
// counterpart in a sub-mix becomes a hole there, so positions line up.
//
// Row addresses in expectations are "<mix>.<row>" where mix is "dough" or
// a sub-mix name and row is "total", "flour", "nonflour" or an item name.
//
// # Usage
//
//	s, err := harness.LoadScenario("testdata/scenarios/funny_pizza.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(s)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range result.Failures {
//	    log.Println(f)
//	}
package harness

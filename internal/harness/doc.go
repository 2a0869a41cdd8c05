// Package harness runs reordering scenarios against a real store.
//
// A scenario seeds one kind of ordered list, applies a sequence of moves,
// and asserts the resulting display order and the strategy each step used.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: swap_neighbours
//	description: "Moving an item past its neighbour swaps the two"
//	kind: category
//	max_depth: 2000
//	setup:
//	  - { id: a, group: expense, position: 3 }
//	  - { id: b, group: expense, position: 2 }
//	steps:
//	  - move: { id: b, target: a, placement: before }
//	  - edge: { id: a, edge: first }
//	  - insert: { id: c, group: expense, edge: last }
//	  - heal: { group: expense }
//	expect:
//	  strategies: [swap, swap, search, skip]
//	  order:
//	    expense: [a, b, c]
//	  positions:
//	    c: 0.5
//
// Unknown fields are rejected so typos fail loudly.
//
// # Determinism
//
// Every run opens a fresh in-memory SQLite database and the positions the
// search produces depend only on the neighbours, so the trace is stable and
// suitable for golden comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/swap.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness

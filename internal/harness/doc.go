// Package harness runs YAML scenarios against the to-do list and checks
// their outcomes.
//
// A scenario drives the real stack: a fresh in-memory SQLite store behind
// the single-writer engine, fed raw JSON through the msg handler.
//
// # Scenario Format
//
//	name: delete_leaves_hole
//	description: "Deleting an entry leaves a hole that is never refilled"
//	owner: alice                 # optional, sent in the InstantiateMsg
//	steps:
//	  - execute: { new_entry: { description: a } }
//	    expect:
//	      result: { id: 1 }
//	  - execute: { delete_entry: { id: 9 } }
//	    expect: { error: not_found }
//	  - query: { query_list: { limit: 10 } }
//	assertions:
//	  - type: trace_count
//	    method: new_entry
//	    count: 1
//	  - type: final_state
//	    entries: [ { id: 1, description: a } ]
//	    next_id: 2
//
// A step without expect must succeed. expect.result is a subset match on
// the decoded response; expect.error is "not_found" or "invalid_input".
//
// # Assertion Types
//
//   - trace_contains: a message with the given method whose body matches args
//   - trace_order: methods appear in the given order
//   - trace_count: a method appears exactly N times
//   - final_state: the live entries (in id order), next_id and owner
//
// # Deterministic Testing
//
// Trace seq numbers come from a fresh logical clock and request ids from a
// sequence named after the scenario, so a scenario produces an identical
// trace on every run. RunWithGolden compares it against
// testdata/golden/<name>.golden.
package harness

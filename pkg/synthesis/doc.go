// Package synthesis generates cited natural-language answers over retrieved
// graph context.
//
// The pipeline is deterministic: retrieval and expansion are complete on
// entry, and the only decision point is the empty-result short circuit.
// Zero ranked entities means a fixed no-results answer, zero confidence, no
// sources, and no completion call. With entities present, exactly one
// completion call is made, with no tool-calling capability offered to the
// provider.
package synthesis

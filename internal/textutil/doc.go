// Package textutil provides the stateless text helpers shared by the
// document chunk builders: token estimation, content cleaning, header-based
// markdown segmentation, small-chunk merging and row-safe table subdivision.
//
// All functions are pure and deterministic; token counts use the chars/4
// heuristic (see EstimateTokens) and are budgeting hints, not exact counts.
package textutil

// Package align classifies a decomposed strain result against an ordered
// alignment tolerance table.
//
// A Table carries two class lists: one keyed by absolute bending magnitude
// (used while the axial strain is below the crossover) and one keyed by
// percent bending (used at or above the crossover), plus a fallback for
// values that exceed every configured band.
//
// Classification is a first-match linear scan in the order the table was
// supplied — the order is part of the contract. Table.Validate enforces
// strictly ascending limits at load time; Classify itself never re-sorts.
package align

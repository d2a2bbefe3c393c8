// Package tables implements the columnar ancestry-record storage the
// simulator appends to: nodes, edges, individuals, populations, sites
// and mutations.
//
// A record goes through three phases:
//
//  1. Build: a *Collection accepts Add* calls, validating every row
//     reference on insertion. Ids are assigned in insertion order and
//     never reused.
//  2. Finish: Sort puts the tables into canonical coordinate order,
//     Simplify reduces them to the history of a chosen sample set
//     (the only operation allowed to renumber ids), and BuildIndex
//     constructs the edge sweep index.
//  3. Query: NewTreeSequence wraps the finished collection read-only.
//
// # Determinism
//
// All operations are deterministic functions of table contents; no
// map iteration order or wall-clock time leaks into results. Digest
// produces a canonical SHA-256 so two records can be compared for
// byte-identity, which the simulator's determinism guarantee is
// stated in terms of.
package tables

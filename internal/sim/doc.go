// Package sim implements a forward-in-time Wright-Fisher style
// simulator for a two-population, diploid, recombining organism,
// producing two mutually consistent ancestry records per run: one
// covering the complete genome and one restricted to caller-specified
// keep-intervals.
//
// The driver owns a single seeded generator and threads it explicitly
// through every sampling helper (breakpoints, parent draws, mutation
// positions, placement draws); identical parameters and seed produce
// byte-identical output records. The run is strictly sequential: one
// generation loop, no shared state, no suspension points.
//
// Failure model: parameter preconditions are checked once up front and
// reported as *ParamError; any table operation failing mid-run aborts
// the whole run, since a half-built pair of records is not a
// meaningful output. Internal sampling invariants (an unsorted keep
// list reaching the clipper, an odd parental pool) panic — they are
// caller bugs, not runtime conditions.
package sim

package tables

// Row identifiers are int32-backed handles into their owning column
// table. Ids are assigned in insertion order starting at 0 and are
// never reused while a collection is being built; only Simplify is
// allowed to renumber them.
//
// Null (-1) is the universal "no reference" sentinel, used for unknown
// individual parents, the first mutation at a site, and unset id maps.

const nullID = -1

// NodeID references a row in the node table.
type NodeID int32

// EdgeID references a row in the edge table.
type EdgeID int32

// IndividualID references a row in the individual table.
type IndividualID int32

// PopulationID references a row in the population table.
type PopulationID int32

// SiteID references a row in the site table.
type SiteID int32

// MutationID references a row in the mutation table.
type MutationID int32

// Null sentinels, one per id type so call sites stay typed.
const (
	NullNode       NodeID       = nullID
	NullEdge       EdgeID       = nullID
	NullIndividual IndividualID = nullID
	NullPopulation PopulationID = nullID
	NullSite       SiteID       = nullID
	NullMutation   MutationID   = nullID
)

// IsNull reports whether the id is the null sentinel.
func (id NodeID) IsNull() bool       { return id == NullNode }
func (id EdgeID) IsNull() bool       { return id == NullEdge }
func (id IndividualID) IsNull() bool { return id == NullIndividual }
func (id PopulationID) IsNull() bool { return id == NullPopulation }
func (id SiteID) IsNull() bool       { return id == NullSite }
func (id MutationID) IsNull() bool   { return id == NullMutation }

// NodeFlags carries per-node bit flags. Only the sample bit is defined.
type NodeFlags uint32

// NodeIsSample marks a node as an observed, present-day genome copy.
const NodeIsSample NodeFlags = 1 << 0

// IsSample reports whether the sample bit is set.
func (f NodeFlags) IsSample() bool { return f&NodeIsSample != 0 }

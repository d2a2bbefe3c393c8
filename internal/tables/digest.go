package tables

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"

	"golang.org/x/text/unicode/norm"
)

// Digest returns a hex-encoded SHA-256 over a canonical byte encoding
// of every table column. Two collections have equal digests iff they
// hold identical rows in identical order, so the digest is the
// byte-identity witness for determinism checks and for the run archive.
//
// Encoding rules: numeric columns as big-endian fixed width (float64
// via IEEE-754 bits, ids as int32), string columns as NFC-normalized
// UTF-8 prefixed with their byte length, each table prefixed with a
// one-byte tag and its row count.
func (c *Collection) Digest() string {
	h := sha256.New()

	writeUint64(h, math.Float64bits(c.sequenceLength))

	h.Write([]byte{'N'})
	writeUint64(h, uint64(c.NumNodes()))
	for i := range c.nodes.time {
		writeUint32(h, uint32(c.nodes.flags[i]))
		writeFloat64(h, c.nodes.time[i])
		writeInt32(h, int32(c.nodes.population[i]))
		writeInt32(h, int32(c.nodes.individual[i]))
	}

	h.Write([]byte{'E'})
	writeUint64(h, uint64(c.NumEdges()))
	for i := range c.edges.left {
		writeFloat64(h, c.edges.left[i])
		writeFloat64(h, c.edges.right[i])
		writeInt32(h, int32(c.edges.parent[i]))
		writeInt32(h, int32(c.edges.child[i]))
	}

	h.Write([]byte{'I'})
	writeUint64(h, uint64(c.NumIndividuals()))
	for i := range c.individuals.flags {
		writeUint32(h, c.individuals.flags[i])
		writeUint64(h, uint64(len(c.individuals.location[i])))
		for _, v := range c.individuals.location[i] {
			writeFloat64(h, v)
		}
		writeUint64(h, uint64(len(c.individuals.parents[i])))
		for _, p := range c.individuals.parents[i] {
			writeInt32(h, int32(p))
		}
	}

	h.Write([]byte{'P'})
	writeUint64(h, uint64(c.NumPopulations()))
	for _, name := range c.populations.name {
		writeString(h, name)
	}

	h.Write([]byte{'S'})
	writeUint64(h, uint64(c.NumSites()))
	for i := range c.sites.position {
		writeFloat64(h, c.sites.position[i])
		writeString(h, c.sites.ancestralState[i])
	}

	h.Write([]byte{'M'})
	writeUint64(h, uint64(c.NumMutations()))
	for i := range c.mutations.site {
		writeInt32(h, int32(c.mutations.site[i]))
		writeInt32(h, int32(c.mutations.node[i]))
		writeInt32(h, int32(c.mutations.parent[i]))
		writeFloat64(h, c.mutations.time[i])
		writeString(h, c.mutations.derivedState[i])
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Digest returns the digest of the wrapped tables.
func (ts *TreeSequence) Digest() string { return ts.tables.Digest() }

func writeUint32(h hash.Hash, v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	h.Write(buf[:])
}

func writeInt32(h hash.Hash, v int32) {
	writeUint32(h, uint32(v))
}

func writeUint64(h hash.Hash, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}

func writeFloat64(h hash.Hash, v float64) {
	writeUint64(h, math.Float64bits(v))
}

// writeString hashes the NFC-normalized form so that metadata strings
// with different Unicode compositions of the same text digest equally.
func writeString(h hash.Hash, s string) {
	b := norm.NFC.Bytes([]byte(s))
	writeUint64(h, uint64(len(b)))
	h.Write(b)
}

package arena

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// TypeID is a stable hash of a component's defining package path and
// function name. It is constant across frames (and processes) for the same
// component definition.
type TypeID uint64

// TypeIDFor derives the type id for a qualified component name, e.g.
// "myapp/widgets.TodoRow".
func TypeIDFor(qualified string) TypeID {
	return TypeID(xxhash.Sum64String(qualified))
}

// Seed returns the per-function fingerprint seed for this component type.
// Deriving it from the type id keeps fingerprints comparable across runs.
func (t TypeID) Seed() uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(t))
	return xxhash.Sum64(buf[:])
}

// InstanceKey distinguishes repeated children of the same component type
// under one parent, e.g. list items. Explicit keys are strings; positional
// keys come from IndexKey.
type InstanceKey string

// IndexKey is the positional key for the i-th repeated child.
func IndexKey(i int) InstanceKey {
	return InstanceKey("#" + strconv.Itoa(i))
}

// NodeIdentity identifies "the same" component invocation across frames.
// Type, Key and Logic distinguish invocations within one parent; Site scopes
// them to the parent's call site, so identical (type, key, logic) children of
// different parents stay distinct. Site is derived from the parent's own
// identity and is therefore stable across frames.
type NodeIdentity struct {
	Type  TypeID
	Key   InstanceKey
	Logic uint32
	Site  uint64
}

func (id NodeIdentity) String() string {
	return fmt.Sprintf("%016x/%s/%d@%08x", uint64(id.Type), string(id.Key), id.Logic, id.Site)
}

// ChildSite derives the call-site scope stamped on this node's children.
func (id NodeIdentity) ChildSite() uint64 {
	buf := make([]byte, 0, 28+len(id.Key))
	buf = binary.LittleEndian.AppendUint64(buf, id.Site)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(id.Type))
	buf = binary.LittleEndian.AppendUint32(buf, id.Logic)
	buf = append(buf, id.Key...)
	return xxhash.Sum64(buf)
}

// GroupID is an opaque control-flow marker identifier. One is recorded for
// every conditional branch, match arm and loop body entered during a
// component invocation; the entered sequence is that invocation's
// structural fingerprint.
type GroupID uint64

// DeriveGroupID computes the marker id for one control-flow block entry.
// slot is the author-supplied call-site constant distinguishing syntactic
// blocks (so an if and its else produce different markers even though only
// one executes); counter is the per-invocation entry ordinal (so repeated
// visits to the same loop body get distinct ids). For a fixed body and
// fixed control-flow decisions the resulting sequence is identical across
// frames.
func DeriveGroupID(seed uint64, slot, counter uint32) GroupID {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], seed)
	binary.LittleEndian.PutUint32(buf[8:12], slot)
	binary.LittleEndian.PutUint32(buf[12:], counter)
	return GroupID(xxhash.Sum64(buf[:]))
}

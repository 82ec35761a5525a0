// Package slotmap holds the router's view of which node serves which slot.
package slotmap

import (
	"fmt"

	"kvcluster/internal/keyslot"
	"kvcluster/internal/respval"
)

// NodeAddr is a node descriptor as returned by CLUSTER SLOTS: the master or
// a replica. Address is the canonical "host:port" pool key.
type NodeAddr struct {
	Address string
	ID      string // optional node id, empty if the server omitted it
}

// SlotRange covers [Start, End] inclusive. Nodes[0] is always the master;
// any further entries are replicas the router ignores for dispatch but
// keeps so they survive a refresh unmodified (spec.md §3).
type SlotRange struct {
	Start, End uint16
	Nodes      []NodeAddr
}

// Master returns the range's master address.
func (r SlotRange) Master() string {
	if len(r.Nodes) == 0 {
		return ""
	}
	return r.Nodes[0].Address
}

// Map is an ordered list of ranges, scanned linearly. No invariant is
// assumed that ranges are disjoint or cover all slots (spec.md §3).
type Map []SlotRange

// Lookup returns the master address of the first range containing slot, or
// ok=false if no range matches.
func (m Map) Lookup(slot uint16) (addr string, ok bool) {
	for _, r := range m {
		if slot >= r.Start && slot <= r.End {
			return r.Master(), true
		}
	}
	return "", false
}

// Masters returns the set of distinct master addresses named anywhere in
// the map, in first-seen order.
func (m Map) Masters() []string {
	seen := make(map[string]struct{}, len(m))
	var out []string
	for _, r := range m {
		addr := r.Master()
		if addr == "" {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}

// ParseClusterSlotsReply converts a CLUSTER SLOTS reply (array of
// [start, end, [host, port, id?], ...] records, per spec.md §6) into a Map.
func ParseClusterSlotsReply(reply respval.Value) (Map, error) {
	if reply.Kind != respval.KindArray {
		return nil, fmt.Errorf("slotmap: CLUSTER SLOTS reply is not an array")
	}

	out := make(Map, 0, len(reply.Array))
	for _, rec := range reply.Array {
		rng, err := parseSlotRangeRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, rng)
	}
	return out, nil
}

func parseSlotRangeRecord(rec respval.Value) (SlotRange, error) {
	if rec.Kind != respval.KindArray || len(rec.Array) < 3 {
		return SlotRange{}, fmt.Errorf("slotmap: malformed CLUSTER SLOTS record")
	}

	start, err := respval.ToInt64(rec.Array[0])
	if err != nil {
		return SlotRange{}, fmt.Errorf("slotmap: bad range start: %w", err)
	}
	end, err := respval.ToInt64(rec.Array[1])
	if err != nil {
		return SlotRange{}, fmt.Errorf("slotmap: bad range end: %w", err)
	}
	if start < 0 || end < 0 || start > end || end >= keyslot.NumSlots {
		return SlotRange{}, fmt.Errorf("slotmap: invalid slot range [%d, %d]", start, end)
	}

	rng := SlotRange{Start: uint16(start), End: uint16(end)}
	for _, nodeVal := range rec.Array[2:] {
		node, err := parseNodeDescriptor(nodeVal)
		if err != nil {
			return SlotRange{}, err
		}
		rng.Nodes = append(rng.Nodes, node)
	}
	if len(rng.Nodes) == 0 {
		return SlotRange{}, fmt.Errorf("slotmap: slot range [%d, %d] has no nodes", start, end)
	}
	return rng, nil
}

func parseNodeDescriptor(v respval.Value) (NodeAddr, error) {
	if v.Kind != respval.KindArray || len(v.Array) < 2 {
		return NodeAddr{}, fmt.Errorf("slotmap: malformed node descriptor")
	}
	host, err := respval.ToString(v.Array[0])
	if err != nil {
		return NodeAddr{}, fmt.Errorf("slotmap: bad node host: %w", err)
	}
	port, err := respval.ToInt64(v.Array[1])
	if err != nil {
		return NodeAddr{}, fmt.Errorf("slotmap: bad node port: %w", err)
	}
	node := NodeAddr{Address: fmt.Sprintf("%s:%d", host, port)}
	if len(v.Array) >= 3 {
		if id, err := respval.ToString(v.Array[2]); err == nil {
			node.ID = id
		}
	}
	return node, nil
}

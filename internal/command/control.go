package command

import (
	"fmt"

	"kvcluster/internal/respval"
)

// Asking implements the ASKING sub-protocol command (spec.md §4.6, §6):
// sent as a single-element request, success is the SimpleString "OK".
type Asking struct{}

func (c Asking) Serialize() respval.Value { return respval.Request("ASKING") }

// Deserialize reports whether the reply was the expected "OK". The router
// checks for an ErrorString reply before calling Deserialize at all, so
// this only needs to handle the success shape (spec.md §4.6).
func (c Asking) Deserialize(reply respval.Value) (bool, error) {
	s, err := respval.ToString(reply)
	if err != nil {
		return false, &DeserializeError{Command: "ASKING", Reply: reply, Reason: err.Error()}
	}
	return s == "OK", nil
}

// ClusterSlots implements CLUSTER SLOTS, the router's one-shot topology
// query (spec.md §4.3, §6). It has no key-derived slot: the router always
// sends it to the bootstrap address directly rather than through normal
// dispatch.
type ClusterSlots struct{}

func (c ClusterSlots) Serialize() respval.Value { return respval.Request("CLUSTER", "SLOTS") }

func (c ClusterSlots) Deserialize(reply respval.Value) (respval.Value, error) {
	return reply, nil
}

// Directed wraps an administrative command that must be addressed to a
// specific node/slot irrespective of any key it carries (the glossary's
// "Directed command"; supplemented from original_source/actix-redis's
// per-command files command/{cluster_setslot,cluster_getkeysinslot,
// cluster_countkeysinslot,migrate}.rs, none of which derive their slot from
// a key at all). Slot() always succeeds with the pinned value.
type Directed struct {
	Name string // e.g. "MIGRATE", "CLUSTER SETSLOT"
	Args []string
	At   uint16 // the slot this command is pinned to
}

func (c Directed) Serialize() respval.Value {
	return respval.Request(c.Name, c.Args...)
}

func (c Directed) Slot() (uint16, SlotSet, bool) { return c.At, nil, true }

func (c Directed) Deserialize(reply respval.Value) (respval.Value, error) {
	return reply, nil
}

// Migrate builds the directed MIGRATE host port key destination-db timeout
// command used to move a single key during resharding. The payload itself
// is opaque to the router; MIGRATE is only ever dispatched via Slot's
// pinned address, never derived from a hashed key (spec.md §1: concrete
// command serializers/codecs are external to the core).
func Migrate(host string, port int, key string, destDB int, timeoutMillis int, slot uint16) Directed {
	return Directed{
		Name: "MIGRATE",
		Args: []string{host, fmt.Sprintf("%d", port), key, fmt.Sprintf("%d", destDB), fmt.Sprintf("%d", timeoutMillis)},
		At:   slot,
	}
}

// ClusterSetSlot builds CLUSTER SETSLOT <slot> <subcommand> [node-id],
// supplemented from original_source/actix-redis's command/cluster_setslot.rs.
func ClusterSetSlot(slot uint16, subcommand string, nodeID string) Directed {
	args := []string{fmt.Sprintf("%d", slot), subcommand}
	if nodeID != "" {
		args = append(args, nodeID)
	}
	return Directed{Name: "CLUSTER", Args: append([]string{"SETSLOT"}, args...), At: slot}
}

// ClusterGetKeysInSlot builds CLUSTER GETKEYSINSLOT <slot> <count>,
// supplemented from command/cluster_getkeysinslot.rs.
func ClusterGetKeysInSlot(slot uint16, count int) Directed {
	return Directed{
		Name: "CLUSTER",
		Args: []string{"GETKEYSINSLOT", fmt.Sprintf("%d", slot), fmt.Sprintf("%d", count)},
		At:   slot,
	}
}

// ClusterCountKeysInSlot builds CLUSTER COUNTKEYSINSLOT <slot>,
// supplemented from command/cluster_countkeysinslot.rs.
func ClusterCountKeysInSlot(slot uint16) Directed {
	return Directed{Name: "CLUSTER", Args: []string{"COUNTKEYSINSLOT", fmt.Sprintf("%d", slot)}, At: slot}
}

package router

import (
	"errors"
	"fmt"

	"kvcluster/internal/command"
	"kvcluster/internal/respval"
)

// ErrNotConnected is returned when no slot-map entry serves the target
// slot, or a Node Connection reports it is not currently connected, after
// the retry budget is exhausted (spec.md §7).
var ErrNotConnected = errors.New("router: not connected")

// ErrDisconnected is returned when a Node Connection's reply channel was
// canceled (its owning connection actor terminated), or when the router
// itself was torn down before a reply could be delivered (spec.md §7).
var ErrDisconnected = errors.New("router: disconnected")

// ErrDifferentSlots is returned when a command's keys address more than
// one slot; Slots carries the offending set (spec.md §4.1, §8 scenario 5).
type ErrDifferentSlots struct {
	Slots command.SlotSet
}

func (e *ErrDifferentSlots) Error() string {
	return fmt.Sprintf("router: command addresses different slots: %v", slotSetSorted(e.Slots))
}

// ErrRedisProtocol wraps an ErrorString reply that ends a dispatch: a
// non-redirection error, or a MOVED/ASK/CLUSTERDOWN reply once the retry
// budget is spent. Its text is surfaced verbatim to the caller (spec.md §7).
// Send also uses it for a Deserialize failure, with Text set to that
// error's message.
type ErrRedisProtocol struct {
	Text string
	Raw  respval.Value
}

func (e *ErrRedisProtocol) Error() string {
	return "router: " + e.Text
}

func slotSetSorted(s command.SlotSet) []uint16 {
	out := make([]uint16, 0, len(s))
	for slot := range s {
		out = append(out, slot)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

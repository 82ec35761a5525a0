package router

import (
	"context"

	"kvcluster/internal/command"
)

// Send dispatches cmd through the router and returns its typed output.
// Cross-slot commands are rejected before any network activity
// (ErrDifferentSlots, spec.md §4.1). The dispatch itself runs in its own
// goroutine so that canceling ctx returns control to the caller without
// stopping the in-flight work: a dropped receiver still lets the retry
// loop run to completion, its result simply discarded (spec.md §2's
// one-shot-sink semantics, rendered here as a buffered result channel
// nobody is forced to drain).
func Send[O any](ctx context.Context, r *Router, cmd command.ClusterCommand[O]) (O, error) {
	var zero O

	slot, multi, ok := cmd.Slot()
	if !ok {
		return zero, &ErrDifferentSlots{Slots: multi}
	}

	type outcome struct {
		out O
		err error
	}
	ch := make(chan outcome, 1)

	go func() {
		reply, err := r.runDispatch(dispatchState{payload: cmd.Serialize(), slot: slot})
		if err != nil {
			ch <- outcome{err: err}
			return
		}
		if reply.IsError() {
			ch <- outcome{err: &ErrRedisProtocol{Text: reply.Text, Raw: reply}}
			return
		}
		out, err := cmd.Deserialize(reply)
		if err != nil {
			ch <- outcome{err: &ErrRedisProtocol{Text: err.Error(), Raw: reply}}
			return
		}
		ch <- outcome{out: out, err: nil}
	}()

	select {
	case res := <-ch:
		return res.out, res.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

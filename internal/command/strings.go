package command

import (
	"kvcluster/internal/keyslot"
	"kvcluster/internal/respval"
)

// GetResult is GET's typed output: Found is false when the key is absent
// (a Nil reply), matching the common "no error, just nothing there" shape.
type GetResult struct {
	Value string
	Found bool
}

// Get implements GET: a single-key, single-slot read.
type Get struct {
	Key string
}

func (c Get) Serialize() respval.Value { return respval.Request("GET", c.Key) }

func (c Get) Slot() (uint16, SlotSet, bool) { return keyslot.Slot(c.Key), nil, true }

func (c Get) Deserialize(reply respval.Value) (GetResult, error) {
	if reply.IsNil() {
		return GetResult{}, nil
	}
	s, err := respval.ToString(reply)
	if err != nil {
		return GetResult{}, &DeserializeError{Command: "GET", Reply: reply, Reason: err.Error()}
	}
	return GetResult{Value: s, Found: true}, nil
}

// Set implements SET key value.
type Set struct {
	Key, Value string
}

func (c Set) Serialize() respval.Value { return respval.Request("SET", c.Key, c.Value) }

func (c Set) Slot() (uint16, SlotSet, bool) { return keyslot.Slot(c.Key), nil, true }

func (c Set) Deserialize(reply respval.Value) (string, error) {
	s, err := respval.ToString(reply)
	if err != nil {
		return "", &DeserializeError{Command: "SET", Reply: reply, Reason: err.Error()}
	}
	return s, nil
}

// Del implements DEL key [key ...]. All keys must share one slot; if they
// don't, Slot reports the offending set so the router rejects the command
// without dispatching it (spec.md §4.1, §8 scenario 5).
type Del struct {
	Keys []string
}

func (c Del) Serialize() respval.Value { return respval.Request("DEL", c.Keys...) }

func (c Del) Slot() (uint16, SlotSet, bool) { return slotOfKeys(c.Keys) }

func (c Del) Deserialize(reply respval.Value) (int64, error) {
	n, err := respval.ToInt64(reply)
	if err != nil {
		return 0, &DeserializeError{Command: "DEL", Reply: reply, Reason: err.Error()}
	}
	return n, nil
}

// MGet implements MGET key [key ...], with the same cross-slot rejection
// as Del.
type MGet struct {
	Keys []string
}

func (c MGet) Serialize() respval.Value { return respval.Request("MGET", c.Keys...) }

func (c MGet) Slot() (uint16, SlotSet, bool) { return slotOfKeys(c.Keys) }

func (c MGet) Deserialize(reply respval.Value) ([]string, error) {
	vals, err := respval.ToStringSlice(reply)
	if err != nil {
		return nil, &DeserializeError{Command: "MGET", Reply: reply, Reason: err.Error()}
	}
	return vals, nil
}

func slotOfKeys(keys []string) (uint16, SlotSet, bool) {
	if len(keys) == 0 {
		return 0, nil, true
	}
	first := keyslot.Slot(keys[0])
	set := SlotSet{first: {}}
	mismatch := false
	for _, k := range keys[1:] {
		s := keyslot.Slot(k)
		if s != first {
			mismatch = true
		}
		set[s] = struct{}{}
	}
	if mismatch {
		return 0, set, false
	}
	return first, nil, true
}

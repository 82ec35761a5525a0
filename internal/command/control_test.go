package command

import (
	"reflect"
	"testing"

	"kvcluster/internal/respval"
)

func TestAskingDeserialize(t *testing.T) {
	ok, err := Asking{}.Deserialize(respval.SimpleString("OK"))
	if err != nil || !ok {
		t.Fatalf("Asking.Deserialize(OK) = (%t, %v), want (true, nil)", ok, err)
	}

	ok, err = Asking{}.Deserialize(respval.SimpleString("SOMETHING ELSE"))
	if err != nil || ok {
		t.Fatalf("Asking.Deserialize(other) = (%t, %v), want (false, nil)", ok, err)
	}
}

func TestDirectedSlotIsPinned(t *testing.T) {
	d := ClusterSetSlot(42, "NODE", "abc123")
	slot, multi, ok := d.Slot()
	if !ok || slot != 42 || multi != nil {
		t.Fatalf("Directed.Slot() = (%d, %v, %t), want (42, nil, true)", slot, multi, ok)
	}
}

func TestMigrateSerialize(t *testing.T) {
	m := Migrate("10.0.0.1", 7000, "foo", 0, 1000, 5)
	got := m.Serialize()
	want := respval.Request("MIGRATE", "10.0.0.1", "7000", "foo", "0", "1000")
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Migrate serialize = %v, want %v", got, want)
	}
}

func TestClusterGetKeysInSlotSerialize(t *testing.T) {
	got := ClusterGetKeysInSlot(7, 10).Serialize()
	want := respval.Request("CLUSTER", "GETKEYSINSLOT", "7", "10")
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ClusterGetKeysInSlot serialize = %v, want %v", got, want)
	}
}

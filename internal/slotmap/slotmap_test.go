package slotmap

import (
	"testing"

	"kvcluster/internal/respval"
)

func clusterSlotsReply(records ...respval.Value) respval.Value {
	return respval.Array2(records...)
}

func slotRecord(start, end int64, nodes ...[2]any) respval.Value {
	items := []respval.Value{respval.Integer(start), respval.Integer(end)}
	for _, n := range nodes {
		host := n[0].(string)
		port := n[1].(int64)
		items = append(items, respval.Array2(respval.BulkStringFrom(host), respval.Integer(port)))
	}
	return respval.Array2(items...)
}

func TestParseClusterSlotsReply(t *testing.T) {
	reply := clusterSlotsReply(
		slotRecord(0, 5460, [2]any{"10.0.0.1", int64(7000)}, [2]any{"10.0.0.2", int64(7000)}),
		slotRecord(5461, 10922, [2]any{"10.0.0.3", int64(7001)}),
	)

	m, err := ParseClusterSlotsReply(reply)
	if err != nil {
		t.Fatalf("ParseClusterSlotsReply: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("len(m) = %d, want 2", len(m))
	}

	addr, ok := m.Lookup(0)
	if !ok || addr != "10.0.0.1:7000" {
		t.Fatalf("Lookup(0) = (%q, %t), want (10.0.0.1:7000, true)", addr, ok)
	}
	addr, ok = m.Lookup(5460)
	if !ok || addr != "10.0.0.1:7000" {
		t.Fatalf("Lookup(5460) = (%q, %t), want (10.0.0.1:7000, true)", addr, ok)
	}
	addr, ok = m.Lookup(5461)
	if !ok || addr != "10.0.0.3:7001" {
		t.Fatalf("Lookup(5461) = (%q, %t), want (10.0.0.3:7001, true)", addr, ok)
	}
	if _, ok := m.Lookup(10923); ok {
		t.Fatalf("Lookup(10923) should report ok=false; no range covers it")
	}
}

func TestMapMasters(t *testing.T) {
	reply := clusterSlotsReply(
		slotRecord(0, 100, [2]any{"a", int64(1)}),
		slotRecord(101, 200, [2]any{"b", int64(2)}),
		slotRecord(201, 300, [2]any{"a", int64(1)}),
	)
	m, err := ParseClusterSlotsReply(reply)
	if err != nil {
		t.Fatalf("ParseClusterSlotsReply: %v", err)
	}
	masters := m.Masters()
	if len(masters) != 2 {
		t.Fatalf("Masters() = %v, want 2 distinct addresses", masters)
	}
	if masters[0] != "a:1" || masters[1] != "b:2" {
		t.Fatalf("Masters() = %v, want first-seen order [a:1 b:2]", masters)
	}
}

func TestParseClusterSlotsReplyRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		reply respval.Value
	}{
		{"not an array", respval.SimpleString("OK")},
		{"record too short", clusterSlotsReply(respval.Array2(respval.Integer(0), respval.Integer(1)))},
		{"start after end", clusterSlotsReply(slotRecord(100, 0, [2]any{"a", int64(1)}))},
		{"end out of range", clusterSlotsReply(slotRecord(0, 99999, [2]any{"a", int64(1)}))},
		{"no nodes", clusterSlotsReply(respval.Array2(respval.Integer(0), respval.Integer(1)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseClusterSlotsReply(tt.reply); err == nil {
				t.Fatalf("expected an error parsing malformed reply")
			}
		})
	}
}

func TestLookupNoRangesMatch(t *testing.T) {
	var m Map
	if _, ok := m.Lookup(42); ok {
		t.Fatalf("an empty map should never report a match")
	}
}

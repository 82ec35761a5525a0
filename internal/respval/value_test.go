package respval

import "testing"

func TestToStringCoercions(t *testing.T) {
	tests := []struct {
		name    string
		in      Value
		want    string
		wantErr bool
	}{
		{"bulk string", BulkStringFrom("hi"), "hi", false},
		{"simple string", SimpleString("OK"), "OK", false},
		{"nil", Nil(), "", false},
		{"integer", Integer(7), "7", false},
		{"array is not a string", Array2(), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToString(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %t", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Fatalf("ToString = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToInt64Coercions(t *testing.T) {
	tests := []struct {
		name    string
		in      Value
		want    int64
		wantErr bool
	}{
		{"integer", Integer(99), 99, false},
		{"bulk digits", BulkStringFrom("12"), 12, false},
		{"simple digits", SimpleString("3"), 3, false},
		{"nil is an error", Nil(), 0, true},
		{"bulk non-numeric", BulkStringFrom("nope"), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToInt64(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %t", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Fatalf("ToInt64 = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsErrorAndIsNil(t *testing.T) {
	if !ErrorString("boom").IsError() {
		t.Fatalf("ErrorString should report IsError")
	}
	if Integer(1).IsError() {
		t.Fatalf("Integer should not report IsError")
	}
	if !Nil().IsNil() {
		t.Fatalf("Nil should report IsNil")
	}
	if BulkStringFrom("").IsNil() {
		t.Fatalf("an empty bulk string is not nil")
	}
}

func TestToStringSlice(t *testing.T) {
	v := Array2(BulkStringFrom("a"), Nil(), BulkStringFrom("c"))
	got, err := ToStringSlice(v)
	if err != nil {
		t.Fatalf("ToStringSlice: %v", err)
	}
	want := []string{"a", "", "c"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("element %d = %q, want %q", i, got[i], want[i])
		}
	}
}

package respval

import (
	"bufio"
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   Value
	}{
		{"nil", Nil()},
		{"integer", Integer(42)},
		{"simple string", SimpleString("OK")},
		{"bulk string", BulkStringFrom("hello")},
		{"empty bulk string", BulkStringFrom("")},
		{"error string", ErrorString("MOVED 1234 127.0.0.1:7001")},
		{"array", Array2(Integer(1), BulkStringFrom("two"), Nil())},
		{"nested array", Array2(Array2(Integer(1), Integer(2)), SimpleString("ok"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, tt.in); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := Decode(bufio.NewReader(&buf))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !valuesEqual(got, tt.in) {
				t.Fatalf("round trip mismatch: got %+v, want %+v", got, tt.in)
			}
		})
	}
}

func TestEncodeRequest(t *testing.T) {
	req := Request("SET", "foo", "bar")
	var buf bytes.Buffer
	if err := Encode(&buf, req); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n"
	if buf.String() != want {
		t.Fatalf("wire bytes = %q, want %q", buf.String(), want)
	}
}

func TestDecodeUnexpectedPrefix(t *testing.T) {
	r := bufio.NewReader(bytes.NewBufferString("!bogus\r\n"))
	if _, err := Decode(r); err == nil {
		t.Fatalf("expected an error for an unknown RESP prefix")
	}
}

func valuesEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindInteger:
		return a.Integer == b.Integer
	case KindSimpleString, KindErrorString:
		return a.Text == b.Text
	case KindBulkString:
		return bytes.Equal(a.Bulk, b.Bulk)
	case KindArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !valuesEqual(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

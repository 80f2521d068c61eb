package codec

import (
	"testing"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	names := r.Names()
	if len(names) != 2 || names[0] != "cbor" || names[1] != "json" {
		t.Errorf("Names = %v", names)
	}
	if _, err := r.Get("xml"); err == nil {
		t.Error("Get(xml) succeeded")
	}
}

func TestCBORCodec(t *testing.T) {
	c := CBOR()
	in := map[string]any{"n": 42}
	b, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]int
	if err := c.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["n"] != 42 {
		t.Fatalf("roundtrip mismatch: %#v", out)
	}
}

package dbtypes

import "testing"

func TestJSONMapValueAndScan(t *testing.T) {
	m := JSONMap{"Frequency": "1.2"}
	v, err := m.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var out JSONMap
	if err := out.Scan([]byte(v.(string))); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if out["Frequency"] != "1.2" {
		t.Fatalf("unexpected scanned map %v", out)
	}
}

func TestJSONMapEmptyAndNil(t *testing.T) {
	var empty JSONMap
	v, err := empty.Value()
	if err != nil || v != "{}" {
		t.Fatalf("expected {} for empty map, got %v err=%v", v, err)
	}

	out := JSONMap{"stale": "x"}
	if err := out.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected nil scan to reset map, got %v", out)
	}

	if err := out.Scan(42); err == nil {
		t.Fatal("expected unsupported type error")
	}
}

func TestJSONMapClone(t *testing.T) {
	orig := JSONMap{"a": "1"}
	c := orig.Clone()
	c["a"] = "2"
	if orig["a"] != "1" {
		t.Fatal("clone mutated the original")
	}
}

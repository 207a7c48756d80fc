package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("zero limit should default, got %d", got)
	}
	if got := NormalizeLimit(500); got != MaxLimit {
		t.Fatalf("oversized limit should clamp, got %d", got)
	}
	if got := NormalizeLimit(10); got != 10 {
		t.Fatalf("valid limit should pass through, got %d", got)
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, Limit: 10}
	if got := p.Offset(); got != 20 {
		t.Fatalf("offset %d, want 20", got)
	}
	if got := (Params{}).Offset(); got != 0 {
		t.Fatalf("default offset %d, want 0", got)
	}
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(Params{Page: 2, Limit: 10}, 25)
	if meta.TotalPages != 3 {
		t.Fatalf("total pages %d, want 3", meta.TotalPages)
	}
	if meta.Page != 2 || meta.Limit != 10 || meta.Total != 25 {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

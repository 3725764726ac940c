package hasher

import "testing"

func TestContentHash_Deterministic(t *testing.T) {
	data := []byte("placeholder payload")
	h1 := ContentHash(data, PayloadHashLen)
	h2 := ContentHash(data, PayloadHashLen)
	if h1 != h2 {
		t.Fatalf("hash differs: %s vs %s", h1, h2)
	}
	if len(h1) != PayloadHashLen {
		t.Errorf("length: got %d, want %d", len(h1), PayloadHashLen)
	}
}

func TestContentHash_Truncation(t *testing.T) {
	data := []byte{1, 2, 3}
	full := ContentHash(data, 0)
	if len(full) != 16 {
		t.Fatalf("full length: got %d", len(full))
	}
	if short := ContentHash(data, 8); short != full[:8] {
		t.Errorf("truncated: got %s, want %s", short, full[:8])
	}
}

func TestEqual(t *testing.T) {
	data := []byte("abc")
	if !Equal(data, ContentHash(data, 8)) {
		t.Error("matching hash rejected")
	}
	if Equal([]byte("abd"), ContentHash(data, 8)) {
		t.Error("different payload accepted")
	}
	if Equal(data, "") {
		t.Error("empty hash accepted")
	}
}

package domain

import (
	"testing"
	"time"
)

func TestCursorRoundTrip(t *testing.T) {
	c := Cursor{CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 42, time.UTC), ID: "r1"}

	got, err := DecodeCursor(c.Encode())
	if err != nil {
		t.Fatalf("DecodeCursor() = %v", err)
	}
	if !got.CreatedAt.Equal(c.CreatedAt) || got.ID != c.ID {
		t.Errorf("round-trip = %+v, want %+v", got, c)
	}
}

func TestDecodeCursorEmptyMeansStart(t *testing.T) {
	c, err := DecodeCursor("")
	if err != nil || c != nil {
		t.Errorf("DecodeCursor(\"\") = (%v, %v), want (nil, nil)", c, err)
	}
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"not-base64!", "bm9jb2xvbg", "OnIx"} {
		if _, err := DecodeCursor(raw); err == nil {
			t.Errorf("DecodeCursor(%q) = nil, want error", raw)
		}
	}
}

func TestCursorAfter(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := &Cursor{CreatedAt: at, ID: "m"}

	older := &Resource{ID: "z", CreatedAt: at.Add(-time.Hour)}
	same := &Resource{ID: "m", CreatedAt: at}
	newer := &Resource{ID: "a", CreatedAt: at.Add(time.Hour)}
	tieAfter := &Resource{ID: "n", CreatedAt: at}

	if !c.After(older) {
		t.Error("older entries come after the cursor position")
	}
	if c.After(same) {
		t.Error("the cursor's own entry must not repeat")
	}
	if c.After(newer) {
		t.Error("newer entries precede the cursor and must not repeat")
	}
	if !c.After(tieAfter) {
		t.Error("same timestamp with a larger ID comes after the cursor")
	}
}

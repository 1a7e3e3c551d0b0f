package validate

import (
	"testing"
	"time"
)

func TestEmail(t *testing.T) {
	if err := Email("casey@example.edu"); err != nil {
		t.Fatalf("valid email rejected: %v", err)
	}
	for _, bad := range []string{"", "bad email", "no-at-sign.edu", "a@b"} {
		if err := Email(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestUsername(t *testing.T) {
	if err := Username("casey_lee-2"); err != nil {
		t.Fatalf("valid username rejected: %v", err)
	}
	for _, bad := range []string{"", "has space", "way-too-long-username-over-thirty-chars"} {
		if err := Username(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestDate(t *testing.T) {
	ts, err := Date("lostDate", "2026-05-01")
	if err != nil {
		t.Fatalf("bare date rejected: %v", err)
	}
	if !ts.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected parse: %v", ts)
	}

	if _, err := Date("lostDate", "2026-05-01T14:30:00Z"); err != nil {
		t.Fatalf("RFC 3339 rejected: %v", err)
	}
	if _, err := Date("lostDate", "05/01/2026"); err == nil {
		t.Fatal("expected error for slash date")
	}
	if _, err := Date("lostDate", ""); err == nil {
		t.Fatal("expected error for empty date")
	}
}

package timetable

import "testing"

func TestParseRange(t *testing.T) {
	cases := []struct {
		in         string
		wantOK     bool
		start, end int
	}{
		{"08:00-08:40", true, 480, 520},
		{"00:00-24:00", false, 0, 0}, // hour 24 is out of range
		{"bad", false, 0, 0},
		{"09:00-08:00", false, 0, 0}, // start >= end
		{"09:00-09:00", false, 0, 0}, // start == end
	}
	for _, c := range cases {
		r := parseRange(c.in)
		if r.ok != c.wantOK {
			t.Errorf("parseRange(%q).ok = %v, want %v", c.in, r.ok, c.wantOK)
			continue
		}
		if r.ok && (r.start != c.start || r.end != c.end) {
			t.Errorf("parseRange(%q) = (%d,%d), want (%d,%d)", c.in, r.start, r.end, c.start, c.end)
		}
	}
}

func TestOverlaps(t *testing.T) {
	a := parseRange("08:00-08:40")
	b := parseRange("08:20-09:00")
	c := parseRange("08:40-09:20")
	if !overlaps(a, b) {
		t.Error("expected a and b to overlap")
	}
	if overlaps(a, c) {
		t.Error("adjacent non-overlapping ranges should not overlap")
	}
	bad := parseRange("garbage")
	if overlaps(a, bad) {
		t.Error("a malformed range should never overlap")
	}
}

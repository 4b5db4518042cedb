package models

import "testing"

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"created", "delivered", "terpakai"} {
		if _, err := ParseStatus(raw); err != nil {
			t.Errorf("ParseStatus(%q) returned error: %v", raw, err)
		}
	}
	for _, raw := range []string{"", "used", "CREATED", "lost"} {
		if _, err := ParseStatus(raw); err == nil {
			t.Errorf("ParseStatus(%q) expected error", raw)
		}
	}
}

func TestUsedDelta(t *testing.T) {
	cases := []struct {
		from, to ProtocolStatus
		want     int
	}{
		{StatusCreated, StatusUsed, 1},
		{StatusDelivered, StatusUsed, 1},
		{StatusUsed, StatusCreated, -1},
		{StatusUsed, StatusDelivered, -1},
		{StatusUsed, StatusUsed, 0},
		{StatusCreated, StatusDelivered, 0},
		{StatusDelivered, StatusCreated, 0},
		{StatusCreated, StatusCreated, 0},
	}
	for _, c := range cases {
		if got := UsedDelta(c.from, c.to); got != c.want {
			t.Errorf("UsedDelta(%s, %s) = %d, want %d", c.from, c.to, got, c.want)
		}
	}
}

func TestScanActionTargetStatus(t *testing.T) {
	if s, err := ActionMarkUsed.TargetStatus(); err != nil || s != StatusUsed {
		t.Errorf("mark_terpakai -> (%v, %v)", s, err)
	}
	if s, err := ActionMarkDelivered.TargetStatus(); err != nil || s != StatusDelivered {
		t.Errorf("mark_delivered -> (%v, %v)", s, err)
	}
	if _, err := ScanAction("mark_lost").TargetStatus(); err == nil {
		t.Error("unknown action expected error")
	}
}

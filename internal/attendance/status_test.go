package attendance

import (
	"testing"
	"time"
)

func closedRecord(login time.Time, d time.Duration) Record {
	logout := login.Add(d)
	return Record{UserID: 1, Day: DayOf(login), Login: login, Logout: &logout, Duration: &d}
}

func TestClassify(t *testing.T) {
	login := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	negative := -time.Minute
	logout := login.Add(time.Hour)

	tests := []struct {
		name string
		rec  Record
		want Status
	}{
		{"open record is incomplete", Record{UserID: 1, Login: login}, StatusIncomplete},
		{"four and a half hours is present", closedRecord(login, 4*time.Hour+30*time.Minute), StatusPresent},
		{"exactly four hours is present", closedRecord(login, 4*time.Hour), StatusPresent},
		{"one hour is left early", closedRecord(login, time.Hour), StatusLeftEarly},
		{"just under four hours is left early", closedRecord(login, 4*time.Hour-time.Second), StatusLeftEarly},
		{"closed without duration is invalid", Record{UserID: 1, Login: login, Logout: &logout}, StatusInvalidDuration},
		{"negative duration is invalid", Record{UserID: 1, Login: login, Logout: &logout, Duration: &negative}, StatusInvalidDuration},
		{"zero record is incomplete", Record{}, StatusIncomplete},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.rec, DefaultMinPresence)
			if got != tc.want {
				t.Errorf("Classify = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClassifyCustomMinPresence(t *testing.T) {
	login := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	if got := Classify(closedRecord(login, time.Hour), 30*time.Minute); got != StatusPresent {
		t.Errorf("1h stay with 30m requirement = %q, want Present", got)
	}
	if got := Classify(closedRecord(login, time.Hour), 0); got != StatusLeftEarly {
		t.Errorf("zero requirement should fall back to default: got %q, want Left Early", got)
	}
}

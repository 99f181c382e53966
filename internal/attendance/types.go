package attendance

import "time"

// User is an enrolled person. Immutable after registration except the
// enrollment image reference.
type User struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	Department string     `json:"department,omitempty"`
	Batch      string     `json:"batch,omitempty"`
	ImageURL   string     `json:"image_url,omitempty"`
	Enrolled   bool       `json:"enrolled"`
	EnrolledAt *time.Time `json:"enrolled_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Record is one user's attendance for one calendar day.
// Logout and Duration stay nil until the user is sighted again after login.
type Record struct {
	UserID   int64          `json:"user_id"`
	Day      string         `json:"day"`
	Login    time.Time      `json:"login_time"`
	Logout   *time.Time     `json:"logout_time,omitempty"`
	Duration *time.Duration `json:"duration,omitempty"`
}

// Event is the outcome of applying a sighting to the ledger.
type Event int

const (
	EventNone Event = iota
	EventLogin
	EventLogout
)

func (e Event) String() string {
	switch e {
	case EventLogin:
		return "login"
	case EventLogout:
		return "logout"
	default:
		return "none"
	}
}

// DayOf returns the calendar date key for a timestamp.
func DayOf(t time.Time) string {
	return t.Format("2006-01-02")
}

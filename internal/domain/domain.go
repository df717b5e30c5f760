package domain

// Bet statuses. The wire values match what the board renders.
const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusBlocked    = "Blocked"
	StatusDone       = "Done"
)

// Statuses lists all valid bet statuses.
var Statuses = []string{StatusOpen, StatusInProgress, StatusBlocked, StatusDone}

// ValidStatus reports whether s is one of the known bet statuses.
func ValidStatus(s string) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Comment is immutable once created and lives as long as its bet.
type Comment struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	Text   string `json:"text"`
	Date   string `json:"date" format:"date"`
}

/// Bet is a tracked work commitment: who owns it, what it is, why it matters,
// how it gets done, and when it is due.
type Bet struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	What        string    `json:"what"`
	Why         string    `json:"why"`
	How         string    `json:"how"`
	When        string    `json:"when" format:"date"`
	Status      string    `json:"status" enum:"Open,In Progress,Blocked,Done"`
	LastUpdated string    `json:"last_updated" format:"date"`
	Tags        []string  `json:"tags,omitempty"`
	Assignees   []string  `json:"assignees,omitempty"`
	Comments    []Comment `json:"comments,omitempty"`
	Archived    bool      `json:"archived,omitempty"`
	ArchivedAt  *string   `json:"archived_at,omitempty" format:"date-time"`
	ArchivedBy  *string   `json:"archived_by,omitempty"`
}

// BetFilters narrow the visible bet list. Owner and Status are exact matches;
// Search is a case-insensitive substring match over what/why/how. Zero values
// mean "no filter".
type BetFilters struct {
	Owner  string `json:"owner,omitempty"`
	Status string `json:"status,omitempty"`
	Search string `json:"search,omitempty"`
}

// Notification kinds.
const (
	NotifySuccess = "success"
	NotifyError   = "error"
	NotifyInfo    = "info"
)

// Notification is a transient board message. It self-expires after a fixed
// interval unless dismissed first; it is never persisted.
type Notification struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Kind    string `json:"kind" enum:"success,error,info"`
}

// Event is one audit log entry recording a store mutation.
type Event struct {
	ID      int64  `json:"id"`
	TS      string `json:"ts" format:"date-time"`
	Type    string `json:"type"`
	BetID   string `json:"bet_id,omitempty"`
	Actor   string `json:"actor"`
	Payload string `json:"payload_json"`
}

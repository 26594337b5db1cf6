package domain

// Feedback is a rating left by a resident.
type Feedback struct {
	ID        string
	Name      string
	Email     string
	TenantID  TenantID
	Message   string
	Rating    string
	Timestamp string
}

// SessionEventKind distinguishes logins from logouts.
type SessionEventKind string

const (
	SessionLogin  SessionEventKind = "login"
	SessionLogout SessionEventKind = "logout"
)

// SessionEvent records a resident signing in or out of a house.
type SessionEvent struct {
	Kind      SessionEventKind
	TenantID  TenantID
	Username  string
	Email     string
	Timestamp string
}

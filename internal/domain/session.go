package domain

import "time"

type UserProfile struct {
	ID    int64  `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"nombre,omitempty"`
	Role  string `json:"rol,omitempty"`
}

// AuthRecord is the persisted login state. Any field may be absent.
type AuthRecord struct {
	Token  string       `json:"token,omitempty"`
	Expiry *time.Time   `json:"exp,omitempty"`
	User   *UserProfile `json:"user,omitempty"`
}

// Expired reports whether the record carries an expiry that is not after now.
func (r AuthRecord) Expired(now time.Time) bool {
	return r.Expiry != nil && !r.Expiry.After(now)
}

func (r AuthRecord) Empty() bool {
	return r.Token == "" && r.Expiry == nil && r.User == nil
}

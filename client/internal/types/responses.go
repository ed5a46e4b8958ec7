package types

import (
	"encoding/json"
	"time"
)

// ------------------------------
// Response Types
// ------------------------------

// AccessToken is the bearer credential returned by the token endpoint.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`

	// ObtainedAt is stamped locally when the token is received.
	ObtainedAt time.Time `json:"-"`
}

// ExpiresAt returns when the token lapses, or the zero time if unknown.
func (t *AccessToken) ExpiresAt() time.Time {
	if t.ObtainedAt.IsZero() || t.ExpiresIn <= 0 {
		return time.Time{}
	}
	return t.ObtainedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// Expired reports whether the token has lapsed at now. Tokens with an unknown
// expiry are never reported as expired.
func (t *AccessToken) Expired(now time.Time) bool {
	exp := t.ExpiresAt()
	return !exp.IsZero() && !now.Before(exp)
}

// UserList wraps the list-users response.
type UserList struct {
	Type  string `json:"type"`
	Size  int    `json:"size,omitempty"`
	Data  []User `json:"data"`
	Links Links  `json:"links"`

	src rawSource
}

// Raw returns the envelope exactly as the API sent it.
func (l *UserList) Raw() json.RawMessage { return l.src.raw }

func (l *UserList) UnmarshalJSON(b []byte) error {
	type plain UserList
	return decodeWithRaw(b, (*plain)(l), &l.src)
}

// MarshalJSON re-emits the body the API sent while the fields still hold
// the decoded values. Once a field is changed the fields are encoded instead.
func (l UserList) MarshalJSON() ([]byte, error) {
	type plain UserList
	return encodeWithRaw(plain(l), l.src)
}

// AccountList wraps the get-accounts response.
type AccountList struct {
	Type  string    `json:"type"`
	Size  int       `json:"size,omitempty"`
	Data  []Account `json:"data"`
	Links Links     `json:"links"`

	src rawSource
}

// Raw returns the envelope exactly as the API sent it.
func (l *AccountList) Raw() json.RawMessage { return l.src.raw }

func (l *AccountList) UnmarshalJSON(b []byte) error {
	type plain AccountList
	return decodeWithRaw(b, (*plain)(l), &l.src)
}

// MarshalJSON re-emits the body the API sent while the fields still hold
// the decoded values. Once a field is changed the fields are encoded instead.
func (l AccountList) MarshalJSON() ([]byte, error) {
	type plain AccountList
	return encodeWithRaw(plain(l), l.src)
}

// AccountNumbers returns the accountNo of every account in order.
func (l *AccountList) AccountNumbers() []string {
	out := make([]string, 0, len(l.Data))
	for _, a := range l.Data {
		out = append(out, a.AccountNo)
	}
	return out
}

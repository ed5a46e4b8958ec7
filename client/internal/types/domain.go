package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ------------------------------
// Core Domain Entities
// ------------------------------

// Links holds the hypermedia references Basiq attaches to resources.
type Links struct {
	Self         string `json:"self,omitempty"`
	Next         string `json:"next,omitempty"`
	Source       string `json:"source,omitempty"`
	Accounts     string `json:"accounts,omitempty"`
	Connection   string `json:"connection,omitempty"`
	Connections  string `json:"connections,omitempty"`
	Institution  string `json:"institution,omitempty"`
	Transactions string `json:"transactions,omitempty"`
}

// User is a financial-data subject.
type User struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Links     Links  `json:"links"`

	src rawSource
}

// Raw returns the record exactly as the API sent it.
func (u *User) Raw() json.RawMessage { return u.src.raw }

func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	return decodeWithRaw(b, (*plain)(u), &u.src)
}

// MarshalJSON re-emits the body the API sent while the fields still hold
// the decoded values. Once a field is changed the fields are encoded instead.
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	return encodeWithRaw(plain(u), u.src)
}

// Job statuses reported for each job step.
const (
	JobStepPending    = "pending"
	JobStepInProgress = "in-progress"
	JobStepSuccess    = "success"
	JobStepFailed     = "failed"
)

// JobStep is one stage of a server-side job.
type JobStep struct {
	Title  string `json:"title"`
	Status string `json:"status"`
	Result *struct {
		Type   string `json:"type,omitempty"`
		URL    string `json:"url,omitempty"`
		Code   string `json:"code,omitempty"`
		Title  string `json:"title,omitempty"`
		Detail string `json:"detail,omitempty"`
	} `json:"result,omitempty"`
}

// Job describes an asynchronous server-side task such as linking a user to an
// institution. Create-connection only returns Type, ID and Links; Steps are
// populated when the job is retrieved.
type Job struct {
	Type    string    `json:"type"`
	ID      string    `json:"id"`
	Created string    `json:"created,omitempty"`
	Updated string    `json:"updated,omitempty"`
	Steps   []JobStep `json:"steps,omitempty"`
	Links   Links     `json:"links"`

	src rawSource
}

// Raw returns the record exactly as the API sent it.
func (j *Job) Raw() json.RawMessage { return j.src.raw }

func (j *Job) UnmarshalJSON(b []byte) error {
	type plain Job
	return decodeWithRaw(b, (*plain)(j), &j.src)
}

// MarshalJSON re-emits the body the API sent while the fields still hold
// the decoded values. Once a field is changed the fields are encoded instead.
func (j Job) MarshalJSON() ([]byte, error) {
	type plain Job
	return encodeWithRaw(plain(j), j.src)
}

// Succeeded reports whether every step has completed successfully.
func (j *Job) Succeeded() bool {
	if len(j.Steps) == 0 {
		return false
	}
	for _, s := range j.Steps {
		if s.Status != JobStepSuccess {
			return false
		}
	}
	return true
}

// FailedStep returns the first failed step, if any.
func (j *Job) FailedStep() (JobStep, bool) {
	for _, s := range j.Steps {
		if s.Status == JobStepFailed {
			return s, true
		}
	}
	return JobStep{}, false
}

// AccountClass is the product classification of an account.
type AccountClass struct {
	Type    string `json:"type,omitempty"`
	Product string `json:"product,omitempty"`
}

// Account is a financial account held by a user. Institution and Connection
// are opaque references.
type Account struct {
	Type           string       `json:"type"`
	ID             string       `json:"id"`
	AccountNo      string       `json:"accountNo"`
	Name           string       `json:"name,omitempty"`
	Currency       string       `json:"currency,omitempty"`
	Balance        string       `json:"balance,omitempty"`
	AvailableFunds string       `json:"availableFunds,omitempty"`
	LastUpdated    string       `json:"lastUpdated,omitempty"`
	Status         string       `json:"status,omitempty"`
	Class          AccountClass `json:"class"`
	Institution    string       `json:"institution,omitempty"`
	Connection     string       `json:"connection,omitempty"`
	Links          Links        `json:"links"`

	src rawSource
}

// Raw returns the record exactly as the API sent it.
func (a *Account) Raw() json.RawMessage { return a.src.raw }

func (a *Account) UnmarshalJSON(b []byte) error {
	type plain Account
	return decodeWithRaw(b, (*plain)(a), &a.src)
}

// MarshalJSON re-emits the body the API sent while the fields still hold
// the decoded values. Once a field is changed the fields are encoded instead.
func (a Account) MarshalJSON() ([]byte, error) {
	type plain Account
	return encodeWithRaw(plain(a), a.src)
}

// BalanceAmount parses Balance. An empty balance is zero.
func (a *Account) BalanceAmount() (decimal.Decimal, error) {
	return parseAmount("balance", a.Balance)
}

// AvailableFundsAmount parses AvailableFunds. An empty value is zero.
func (a *Account) AvailableFundsAmount() (decimal.Decimal, error) {
	return parseAmount("availableFunds", a.AvailableFunds)
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse %s '%s': %w", field, s, err)
	}
	return d, nil
}

// rawSource remembers the body a record was decoded from, plus the encoding
// of its fields at that moment so later edits can be detected.
type rawSource struct {
	raw     json.RawMessage
	decoded []byte
}

// decodeWithRaw unmarshals b into v and keeps a private copy of b.
func decodeWithRaw(b []byte, v any, src *rawSource) error {
	if err := json.Unmarshal(b, v); err != nil {
		return err
	}
	enc, err := json.Marshal(v)
	if err != nil {
		return err
	}
	src.raw = append(json.RawMessage(nil), b...)
	src.decoded = enc
	return nil
}

// encodeWithRaw encodes v, returning the original body instead when v is
// unchanged since decoding.
func encodeWithRaw(v any, src rawSource) ([]byte, error) {
	enc, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(src.raw) > 0 && bytes.Equal(enc, src.decoded) {
		return src.raw, nil
	}
	return enc, nil
}

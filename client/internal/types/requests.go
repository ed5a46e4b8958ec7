package types

// ------------------------------
// Request Types
// ------------------------------

// TokenScope is the only scope requested by this SDK.
const TokenScope = "SERVER_ACCESS"

// CreateUserRequest holds parameters for a new user. Empty optional names are
// omitted from the payload.
type CreateUserRequest struct {
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// InstitutionRef identifies a financial institution, e.g. "AU00000".
type InstitutionRef struct {
	ID string `json:"id"`
}

// CreateConnectionRequest links a user to an institution. The credentials are
// forwarded verbatim and never retained by the SDK.
type CreateConnectionRequest struct {
	LoginID     string         `json:"loginId"`
	Password    string         `json:"password"`
	Institution InstitutionRef `json:"institution"`
}

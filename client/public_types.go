package client

import "github.com/jdenly/basiq-api/client/internal/types"

// Public type aliases so SDK consumers can import only the client package.
// Requests
type (
	CreateUserRequest       = types.CreateUserRequest
	CreateConnectionRequest = types.CreateConnectionRequest
	InstitutionRef          = types.InstitutionRef

	// Domain entities
	AccessToken  = types.AccessToken
	User         = types.User
	Job          = types.Job
	JobStep      = types.JobStep
	Account      = types.Account
	AccountClass = types.AccountClass
	Links        = types.Links

	// Responses
	UserList    = types.UserList
	AccountList = types.AccountList
)

// Job step statuses.
const (
	JobStepPending    = types.JobStepPending
	JobStepInProgress = types.JobStepInProgress
	JobStepSuccess    = types.JobStepSuccess
	JobStepFailed     = types.JobStepFailed
)

package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and engine errors
	ErrAPIRequest        = fmt.Errorf("API request failed")
	ErrMaxAttempts       = fmt.Errorf("maximum attempts reached")
	ErrCreateUnsupported = fmt.Errorf("create not supported by tool API")
	ErrDeleteUnsupported = fmt.Errorf("delete not supported by tool API")
	ErrRunInProgress     = fmt.Errorf("an operation is already in progress")
	ErrNothingFetched    = fmt.Errorf("no fetched state: run fetch first")
	ErrNoWorkspaces      = fmt.Errorf("no workspaces selected")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)

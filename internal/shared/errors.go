package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Session errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrUserNotFound     = fmt.Errorf("user not found")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrMovieNotFound      = fmt.Errorf("movie not found")

	// Library errors
	ErrAlreadySaved = fmt.Errorf("movie already in library")
	ErrNotSaved     = fmt.Errorf("movie not in library")
	ErrLibraryLoad  = fmt.Errorf("failed to load library")

	// Site build errors
	ErrPartialNotFound = fmt.Errorf("partial not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

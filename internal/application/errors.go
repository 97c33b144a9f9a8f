package application

import "errors"

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrAccessDenied       = errors.New("access denied")
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidSession     = errors.New("invalid session")
	ErrSessionUnavailable = errors.New("session store unavailable")
)

// UserMessage is the plain text shown to the shopper for err.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return "Please sign in to download your purchased books."
	case errors.Is(err, ErrAccessDenied):
		return "You have not purchased this book."
	case errors.Is(err, ErrProductNotFound):
		return "Book not found."
	case errors.Is(err, ErrSessionUnavailable):
		return "Sign-in is temporarily unavailable. Please try again."
	case errors.Is(err, ErrNetworkUnavailable):
		return "Failed to download. Please try again or contact support."
	default:
		return "Something went wrong. Please try again."
	}
}

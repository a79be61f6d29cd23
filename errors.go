package capsolve

import "errors"

var (
	// ErrNoChallenge - page carries no challenge widget. Reported before
	// any call to the solving service
	ErrNoChallenge = errors.New("recaptcha: no challenge on page")

	// ErrNoSiteKey - widget exists, but cannot find its site key
	ErrNoSiteKey = errors.New("recaptcha: widget without site key")
)

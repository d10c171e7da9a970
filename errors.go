// errors
package actor

import (
	"github.com/pkg/errors"
)

// Sentinel errors returned by the package. Callers should test
// with errors.Is since most call sites wrap these with context.
var (
	// ErrInvalidAddress is returned when a handle is constructed
	// with an empty address.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrDuplicateActor is returned when registering a uid that
	// already has a lock at this address.
	ErrDuplicateActor = errors.New("actor already registered")

	// ErrActorNotFound is returned when acquiring, unregistering
	// or dispatching against a uid with no lock at this address.
	ErrActorNotFound = errors.New("actor not found")

	// ErrResourceExists is returned when registering a transfer
	// resource under a key that is already taken.
	ErrResourceExists = errors.New("resource already registered")

	// ErrResourceNotFound is returned when fetching or releasing
	// a transfer resource that was never registered or has been
	// released.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrEnvClosed is returned by every Environment operation
	// after Close.
	ErrEnvClosed = errors.New("environment closed")

	// ErrNoRoute is returned by a transport that has no environment
	// registered for the requested address.
	ErrNoRoute = errors.New("no route to address")
)

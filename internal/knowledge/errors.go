package knowledge

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a curation operation references a document id
// that does not exist in the store.
var ErrNotFound = errors.New("document not found")

// ProviderError wraps a failed embedding call (network, auth, quota, malformed
// response, or no provider configured). The core never retries these; the
// caller decides whether to degrade or fail.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// StoreError wraps a failed persistence call. It is propagated unchanged to
// the caller.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("knowledge store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

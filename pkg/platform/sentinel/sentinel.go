package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and use-cases translate them into domain errors, so adapters never
// need to know the domain taxonomy.
//
//   - ErrNotFound: no row matches the lookup
//   - ErrAlreadyUsed: a unique key (email, slug, event+user pair) is taken
//   - ErrUnavailable: the backing service cannot be reached
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrUnavailable = errors.New("unavailable")
)

package moment

import "errors"

var (
	// ErrNoMedia means the user has no photos or videos at all.
	ErrNoMedia = errors.New("no media uploaded")

	// ErrNoOccurrences means the requested identities appear in none of the
	// user's media.
	ErrNoOccurrences = errors.New("no media matches the requested faces")

	// ErrEmptyAssembly means the assembly produced nothing to encode, either
	// because the duration budget was zero or no clip survived selection.
	ErrEmptyAssembly = errors.New("nothing to assemble")
)

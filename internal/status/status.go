package status

import "errors"

// Error kinds shared by the domain and the repository. Callers match them with
// errors.Is; the concrete message is wrapped around them with fmt.Errorf.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrAlreadyExists   = errors.New("already exists")
	ErrNotFound        = errors.New("not found")
	ErrIllegalState    = errors.New("illegal state")
)

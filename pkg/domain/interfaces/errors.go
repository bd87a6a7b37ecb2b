package interfaces

import "github.com/m-mizutani/goerr/v2"

// Repository sentinel errors shared by every implementation
var (
	ErrNotFound = goerr.New("not found")
	ErrConflict = goerr.New("concurrent modification")
)

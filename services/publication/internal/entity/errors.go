package entity

import (
	"errors"
	"fmt"
)

var (
	ErrBadRequest      = errors.New("bad request")
	ErrNotFound        = errors.New("publication not found")
	ErrUnauthenticated = errors.New("user is not authenticated")
	ErrNoContent       = errors.New("no publications to show")

	ErrNoFollows = fmt.Errorf("%w: user follows nobody", ErrNoContent)
)

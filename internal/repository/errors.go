package repository

import "github.com/alexanderramin/tempo/internal/domain"

// ErrNotFound is returned when a row does not exist. It is the domain
// sentinel, so errors.Is works against either name.
var ErrNotFound = domain.ErrNotFound

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrIdentityNotFound    = errors.New("identity not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountLocked       = errors.New("account temporarily locked")
	ErrAccountNotActive    = errors.New("account not active")
	ErrTokenInvalid        = errors.New("invalid token")
	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrConfiguration       = errors.New("invalid configuration")

	ErrVersionConflict = errors.New("identity was modified concurrently")
	ErrEmailTaken      = errors.New("email already in use")
	ErrInvalidInput    = errors.New("invalid input")
	ErrRoleNotFound    = errors.New("role not found")
	ErrRoleExists      = errors.New("role already exists")
)

// AccountNotActiveError carries the member status that blocked authentication.
type AccountNotActiveError struct {
	Status MemberStatus
}

func (e *AccountNotActiveError) Error() string {
	return fmt.Sprintf("%s: status %s", ErrAccountNotActive, e.Status)
}

func (e *AccountNotActiveError) Unwrap() error { return ErrAccountNotActive }

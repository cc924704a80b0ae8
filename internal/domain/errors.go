package domain

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrAlreadyApplied = errors.New("already applied to this job")
)

package service

import "errors"

var (
	ErrInvalidContact    = errors.New("invalid contact")
	ErrContactIDMismatch = errors.New("contact ID mismatch")
	ErrInvalidCartLine   = errors.New("invalid cart line")
)

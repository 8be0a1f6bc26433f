package list

import "errors"

var (
	ErrInvalidName       = errors.New("name is required")
	ErrInvalidQuantity   = errors.New("quantity must be a number greater than zero and at most 1,000,000")
	ErrInvalidPrice      = errors.New("price must be a number from 0 to 1,000,000,000")
	ErrInvalidCategory   = errors.New("category name is required")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrInvalidListCode   = errors.New("invalid list code")
)

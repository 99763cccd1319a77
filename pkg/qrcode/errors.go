package qrcode

import "errors"

var (
	ErrEmptyContent   = errors.New("qrcode: content cannot be empty")
	ErrInvalidSize    = errors.New("qrcode: size must be positive")
	ErrContentTooLong = errors.New("qrcode: content too long to encode")
)

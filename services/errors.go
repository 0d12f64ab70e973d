package services

import "errors"

// Sentinel errors the API layer translates into response codes.
var (
	ErrItemNotFound      = errors.New("item not found")
	ErrInvalidImage      = errors.New("invalid image data")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoItems           = errors.New("no items matched the requested ids")
)

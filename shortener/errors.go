package shortener

import "errors"

var (
	ErrInvalidURL        = errors.New("URL must start with http:// or https://")
	ErrCannotDeriveCode  = errors.New("could not derive a short code from the URL")
	ErrCodeAlreadyExists = errors.New("short code already exists")
	ErrLinkNotFound      = errors.New("short link not found")
)

package domain

import "errors"

var (
	ErrUsage         = errors.New("usage error")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrCorruptIndex  = errors.New("corrupt index")
	ErrTermNotFound  = errors.New("term not found")
	ErrIndexTooLarge = errors.New("index exceeds 32-bit offsets")
	ErrNoManifest    = errors.New("manifest not found")
)

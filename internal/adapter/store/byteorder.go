package store

import (
	"encoding/binary"
	"fmt"

	"jassjr/internal/domain"
)

// ByteOrder selects how integer fields are laid out in the binary artifacts.
type ByteOrder string

const (
	// Compat writes postings and lengths in host order and the vocabulary
	// offset/length fields big-endian.
	Compat ByteOrder = "compat"
	// Native writes every integer in host order.
	Native ByteOrder = "native"
	Little ByteOrder = "little"
	Big    ByteOrder = "big"
)

// ParseByteOrder parses a byte_order setting.
func ParseByteOrder(s string) (ByteOrder, error) {
	switch ByteOrder(s) {
	case Compat, Native, Little, Big:
		return ByteOrder(s), nil
	case "":
		return Compat, nil
	}
	return "", fmt.Errorf("%w: unknown byte order %q", domain.ErrInvalidConfig, s)
}

// Orders returns the encoding used for postings/lengths and for the
// vocabulary offset/length fields.
func (o ByteOrder) Orders() (payload, vocab binary.ByteOrder) {
	switch o {
	case Native:
		return binary.NativeEndian, binary.NativeEndian
	case Little:
		return binary.LittleEndian, binary.LittleEndian
	case Big:
		return binary.BigEndian, binary.BigEndian
	default:
		return binary.NativeEndian, binary.BigEndian
	}
}

func (o ByteOrder) String() string {
	if o == "" {
		return string(Compat)
	}
	return string(o)
}

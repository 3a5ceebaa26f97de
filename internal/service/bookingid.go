package service

import (
	"crypto/rand"
	"math/big"
)

const (
	bookingIDAlphabet = "1234567890ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	bookingIDLength   = 10
)

// IDGenerator produces booking codes.
type IDGenerator func() (string, error)

// NewBookingID returns a random 10 character code over 0-9A-Z.
func NewBookingID() (string, error) {
	max := big.NewInt(int64(len(bookingIDAlphabet)))
	buf := make([]byte, bookingIDLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = bookingIDAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// ValidBookingID reports whether id has the shape NewBookingID produces.
func ValidBookingID(id string) bool {
	if len(id) != bookingIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// GenerateID generates a unique ID with the given prefix
func GenerateID(prefix string) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	const length = 10

	result := make([]byte, length)
	for i := range result {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[num.Int64()]
	}

	return fmt.Sprintf("%s_%s", prefix, string(result))
}

// GenerateEntryID generates a history entry ID: millisecond timestamp
// plus a short random base36 suffix, sortable by creation time.
func GenerateEntryID(at time.Time) string {
	num, _ := rand.Int(rand.Reader, big.NewInt(1<<31))
	return fmt.Sprintf("%d_%s", at.UnixMilli(), strconv.FormatInt(num.Int64(), 36))
}

// GenerateAccountNumber generates a display account number in the
// NNNNNN-NNNNNN form used on enterprise bank cards.
func GenerateAccountNumber() string {
	left, _ := rand.Int(rand.Reader, big.NewInt(900000))
	right, _ := rand.Int(rand.Reader, big.NewInt(900000))
	return fmt.Sprintf("%06d-%06d", 100000+left.Int64(), 100000+right.Int64())
}

// HashSecret hashes a PIN or staff password using bcrypt
func HashSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckSecret checks a PIN or staff password against a bcrypt hash
func CheckSecret(secret, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	return err == nil
}

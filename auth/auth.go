// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidOrganizerKey = errors.New("invalid organizer key")
	ErrInvalidToken        = errors.New("invalid participant token")
)

// NewID returns a random UUIDv4 string for database records
func NewID() string {
	return uuid.NewString()
}

// IsID reports whether s parses as a UUID
func IsID(s string) bool {
	return uuid.Validate(s) == nil
}

// GenerateOrganizerKey creates an HMAC-based key for managing an event.
// It is deterministic, so it never has to be stored.
func GenerateOrganizerKey(eventID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte("organizer:" + eventID))
	sum := h.Sum(nil)
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateOrganizerKey checks the provided key against the event
func ValidateOrganizerKey(eventID, key, salt string) error {
	expected := GenerateOrganizerKey(eventID, salt)
	if key == "" || !hmac.Equal([]byte(key), []byte(expected)) {
		return ErrInvalidOrganizerKey
	}
	return nil
}

// GenerateParticipantToken creates a random secret identifying a participant
func GenerateParticipantToken() (string, error) {
	b := make([]byte, 24) // 192 bits
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate participant token: %w", err)
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// GenerateEventSlug creates a short deterministic URL slug for an event
func GenerateEventSlug(eventID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(eventID))
	return base62Encode(h.Sum(nil)[:8])
}

// HashCardID turns an attendance card number into the voter id stored with
// its votes, so raw card numbers never reach the database.
func HashCardID(cardID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte("card:" + strings.TrimSpace(cardID)))
	return "card-" + hex.EncodeToString(h.Sum(nil)[:10])
}

// base62Encode converts up to 8 bytes to base62 (0-9, a-z, A-Z)
func base62Encode(data []byte) string {
	const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	var num uint64
	for i := 0; i < len(data) && i < 8; i++ {
		num = num<<8 | uint64(data[i])
	}

	if num == 0 {
		return "0"
	}

	result := make([]byte, 0, 11)
	for num > 0 {
		result = append(result, base62Chars[num%62])
		num /= 62
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return string(result)
}

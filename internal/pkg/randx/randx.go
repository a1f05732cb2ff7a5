/*
Package randx provides functions for generating cryptographically secure
random identifiers: Base62 room codes and UUID connection/message ids.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set.
	Base62Len = int64(len(Base62Chars))

	// RoomCodeLength is the fixed length of generated room codes.
	RoomCodeLength = 6
)

// RoomCode generates a Base62 encoded room code using crypto/rand.
func RoomCode() (string, error) {
	result := make([]byte, RoomCodeLength)

	for i := 0; i < RoomCodeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for room code: %w", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// ConnectionID generates a UUID v4 string identifying one live session.
func ConnectionID() string {
	return uuid.New().String()
}

// MessageID generates a UUID v4 string identifying one server frame.
func MessageID() string {
	return uuid.New().String()
}

// IsValidRoomCode checks that the string has the generated-code shape:
// RoomCodeLength characters, all from the Base62 set. Join frames accept any
// non-empty identifier; this stricter check guards the HTTP room endpoints.
func IsValidRoomCode(code string) bool {
	if len(code) != RoomCodeLength {
		return false
	}

	for _, char := range code {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}

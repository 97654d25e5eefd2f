package notebook

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	idLength      = 12
	crockfordBase = "0123456789abcdefghjkmnpqrstvwxyz" // lowercase
)

// NewID returns a fresh document id: 12 lowercase Crockford base32 characters
// drawn from the random bits of a UUIDv7.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuidv7: %w", err)
	}

	return shortIDFromUUIDBits(id), nil
}

func shortIDFromUUIDBits(id uuid.UUID) string {
	// UUIDv7 layout (RFC 9562): 48-bit time, 4-bit version, 12-bit rand_a,
	// 2-bit variant, 62-bit rand_b. The high 60 random bits become the id.
	randA := (uint16(id[6]&0x0f) << 8) | uint16(id[7])
	randB := (uint64(id[8]&0x3f) << 56) |
		(uint64(id[9]) << 48) |
		(uint64(id[10]) << 40) |
		(uint64(id[11]) << 32) |
		(uint64(id[12]) << 24) |
		(uint64(id[13]) << 16) |
		(uint64(id[14]) << 8) |
		uint64(id[15])

	top60 := (uint64(randA) << 48) | (randB >> 14)

	var buf [idLength]byte
	for i := idLength - 1; i >= 0; i-- {
		buf[i] = crockfordBase[top60&0x1f]
		top60 >>= 5
	}

	return string(buf[:])
}

package pkg

import (
	"crypto/rand"
	"math/big"
)

// Room codes are short, human-shareable and case-insensitive; 36^6 codes make
// collisions among live rooms vanishingly rare.
const (
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLength   = 6
)

// GenerateRoomCode - generates a shareable identifier for a room.
func GenerateRoomCode() string {
	code := make([]byte, roomCodeLength)

	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomCodeAlphabet))))
		if err != nil {
			return ""
		}
		code[i] = roomCodeAlphabet[n.Int64()]
	}

	return string(code)
}

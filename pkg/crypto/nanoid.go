package crypto

import (
	"crypto/rand"
	"math"
)

const (
	clientIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	clientIDSize     = 22 // 22 * 6 = 132 bits (uuid is 128 bits) of entropy
)

// clientIDMask covers the 64-character alphabet with the smallest power
// of two, so masked bytes index it without modulo bias.
const clientIDMask = 63

// ClientID returns a URL-safe random identifier suitable for the stable
// per-browser client cookie. Random bytes are masked and rejected when
// they fall outside the alphabet, keeping the distribution uniform.
func ClientID() (string, error) {
	alphabetLen := len(clientIDAlphabet)
	step := int(math.Ceil(1.6 * float64(clientIDMask*clientIDSize) / float64(alphabetLen)))

	id := make([]byte, clientIDSize)
	buffer := make([]byte, step)

	for position := 0; position < clientIDSize; {
		if _, err := rand.Read(buffer); err != nil {
			return "", err
		}

		for i := 0; i < step && position < clientIDSize; i++ {
			index := buffer[i] & clientIDMask

			if int(index) < alphabetLen {
				id[position] = clientIDAlphabet[index]
				position++
			}
		}
	}

	return string(id), nil
}

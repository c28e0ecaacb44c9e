package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GeneratePin menghasilkan PIN numerik 4 digit untuk klaim meja.
func GeneratePin() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// crypto/rand praktis tidak pernah gagal; fallback supaya klaim tetap jalan
		return "0000"
	}
	return fmt.Sprintf("%04d", n.Int64())
}

package utils

import (
	"fmt"
	"math"
	"strings"
)

// RoundCurrency membulatkan ke 2 desimal (unit minor mata uang).
func RoundCurrency(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// WithinMinorUnit -> true jika selisih dua nominal di bawah satu unit minor
func WithinMinorUnit(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

// FormatCurrency memformat angka dengan pemisah ribuan, mis. 15000.5 -> "15.000,50"
func FormatCurrency(amount float64) string {
	formatted := fmt.Sprintf("%.2f", amount)

	parts := strings.Split(formatted, ".")
	integerPart := parts[0]
	decimalPart := parts[1]

	var result []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		result = append([]string{integerPart[start:i]}, result...)
	}

	return strings.Join(result, ".") + "," + decimalPart
}

package pkg

import (
	"errors"
	"strconv"
	"strings"
)

// Parses a string into a size in bytes. e.g. "1.2MB" -> int64(1.2 * 1024 * 1024)
func ParseSize(s string) (int64, error) {
	s = strings.TrimRight(strings.ToUpper(s), "B")
	if len(s) == 0 {
		return 0, errors.New("invalid size")
	}
	var multiplier float64
	switch s[len(s)-1] {
	case 'K':
		multiplier = 1024
	case 'M':
		multiplier = 1024 * 1024
	case 'G':
		multiplier = 1024 * 1024 * 1024
	case 'T':
		multiplier = 1024 * 1024 * 1024 * 1024
	default:
		multiplier = 1
	}
	if multiplier != 1 {
		s = s[:len(s)-1]
	}
	s = strings.TrimRight(s, " ")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(v * multiplier), nil
}

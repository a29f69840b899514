package util

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseIntDefault returns def for an empty value and an error for anything
// that is not an integer.
func ParseIntDefault(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return v, nil
}

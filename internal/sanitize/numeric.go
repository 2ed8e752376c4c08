package sanitize

import (
	"fmt"
	"strconv"
	"strings"
)

// Uint parses the text as an unsigned integer in base that must fit in bits,
// and emits it in decimal. Leading zeros disappear: "064" becomes "64" and
// with base 16 "0800" becomes "2048".
func Uint(base, bits int) Transform {
	return scalar(fmt.Sprintf("uint(%d,%d)", base, bits), func(s string) (string, error) {
		if s == "" {
			return "", ErrEmpty
		}
		n, err := strconv.ParseUint(s, base, bits)
		if err != nil {
			return "", err
		}
		return strconv.FormatUint(n, 10), nil
	})
}

// FormatUint re-emits a decimal integer in base, lowercase, without prefix
// or padding.
func FormatUint(base int) Transform {
	return scalar(fmt.Sprintf("format(%d)", base), func(s string) (string, error) {
		if s == "" {
			return "", ErrEmpty
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return "", err
		}
		return strconv.FormatUint(n, base), nil
	})
}

// ParseAny accepts a value written either in decimal or as 0x-prefixed hex,
// checks it fits in bits and emits decimal. Configuration files use both
// forms for the same field ("2048" or "0x0800").
func ParseAny(bits int) Transform {
	return scalar(fmt.Sprintf("parseAny(%d)", bits), func(s string) (string, error) {
		text := strings.TrimSpace(s)
		base := 10
		if rest, ok := strings.CutPrefix(strings.ToLower(text), "0x"); ok {
			text, base = rest, 16
		}
		if text == "" {
			return "", ErrEmpty
		}
		n, err := strconv.ParseUint(text, base, bits)
		if err != nil {
			return "", err
		}
		return strconv.FormatUint(n, 10), nil
	})
}

// Package models defines data structures for hklens
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ExchangeSuffix is the Hong Kong exchange qualifier required by the
// market data provider.
const ExchangeSuffix = ".HK"

// NormalizeTicker maps a user-supplied stock code into the canonical
// exchange-qualified symbol: "700" -> "0700.HK", "01810" -> "1810.HK",
// "0700.HK" -> "0700.HK". Input that does not parse as an integer keeps
// its original form with the suffix appended. Idempotent and pure.
func NormalizeTicker(raw string) string {
	base := strings.TrimSpace(strings.TrimSuffix(raw, ExchangeSuffix))

	if code, err := strconv.Atoi(base); err == nil {
		return fmt.Sprintf("%04d%s", code, ExchangeSuffix)
	}

	if strings.HasSuffix(raw, ExchangeSuffix) {
		return raw
	}
	return raw + ExchangeSuffix
}

// SinaCode converts a raw ticker into the Sina lookup key ("hk00700").
// Non-numeric codes have no Sina representation.
func SinaCode(raw string) (string, error) {
	base := strings.TrimSpace(strings.TrimSuffix(raw, ExchangeSuffix))
	code, err := strconv.Atoi(base)
	if err != nil {
		return "", fmt.Errorf("ticker '%s' is not a numeric HK code", raw)
	}
	return fmt.Sprintf("hk%05d", code), nil
}

// SplitTickerInput splits free-form user input (comma, whitespace or
// newline separated) into individual raw codes, dropping empties.
func SplitTickerInput(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

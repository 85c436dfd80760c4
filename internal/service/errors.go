package service

import (
	"errors"
	"strings"
)

// ErrValidation indicates a malformed insert candidate. It is always wrapped with the offending detail.
var ErrValidation = errors.New("invalid exchange rate")

// ErrDuplicateRate indicates the canonical (pair, hour) is already stored, in either direction.
var ErrDuplicateRate = errors.New("exchange rate for this currency pair (or its inverse) and hour already exists")

// ErrNotFound indicates no stored record matches the requested pair (and hour).
var ErrNotFound = errors.New("exchange rate not found")

// ErrInvalidDatetime indicates a datetime query value that is not "YYYY-MM-DD HH:00:00".
var ErrInvalidDatetime = errors.New("invalid datetime format")

// ErrInternal indicates an internal server error.
var ErrInternal = errors.New("internal error")

// ErrInternalQueue indicates an internal queue error.
var ErrInternalQueue = errors.New("internal queue error")

// IsValidCurrencyCode checks whether a string is a valid 3-letter currency code.
func IsValidCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	code = strings.ToUpper(code)
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

func normalizePair(from, to string) (normFrom, normTo string, ok bool) {
	if !IsValidCurrencyCode(from) || !IsValidCurrencyCode(to) {
		return "", "", false
	}
	return strings.ToUpper(from), strings.ToUpper(to), true
}

// canonicalPair orders two codes the way the store persists them.
func canonicalPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

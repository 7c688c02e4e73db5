package access

import (
	"regexp"
	"strings"
)

// ExemptLetters are the second characters that mark diplomatic, foreign or corporate identities
const ExemptLetters = "AUZEXM"

var (
	standardIdentityPattern = regexp.MustCompile(`^[0-9]{10}$`)
	// second character letter form, e.g. 1A23456789
	letterIdentityPattern = regexp.MustCompile(`^[0-9A-Z][` + ExemptLetters + `][0-9A-Z]{8}$`)
	// two digit prefix before a separator, e.g. 17-4501
	prefixedIdentityPattern = regexp.MustCompile(`^[0-9]{2}-[0-9A-Z]{1,12}$`)
)

// IdentityNumber is a validated national identity number.
// The standard form is exactly ten digits, exempt identities use one of the alternate forms.
type IdentityNumber struct {
	value string
}

// ParseIdentityNumber validates value as a standard or exempt identity number
func ParseIdentityNumber(value string) (IdentityNumber, error) {
	if standardIdentityPattern.MatchString(value) ||
		letterIdentityPattern.MatchString(value) ||
		prefixedIdentityPattern.MatchString(value) {
		return IdentityNumber{value: value}, nil
	}
	return IdentityNumber{}, newValidationError("identity", value,
		"expected format XXXXXXXXXX, where X are the ten digits of the identity card")
}

// Exempt reports whether the identity is a diplomatic, foreign or corporate identity.
// Exempt identities are not subject to weekday restrictions.
func (n IdentityNumber) Exempt() bool {
	if len(n.value) > 1 && strings.IndexByte(ExemptLetters, n.value[1]) >= 0 {
		return true
	}
	return len(strings.SplitN(n.value, "-", 2)[0]) == 2
}

// LastDigit returns the trailing digit of the identity.
// ok is false when the identity does not end in a digit.
func (n IdentityNumber) LastDigit() (digit int, ok bool) {
	if len(n.value) == 0 {
		return 0, false
	}
	last := n.value[len(n.value)-1]
	if last < '0' || last > '9' {
		return 0, false
	}
	return int(last - '0'), true
}

func (n IdentityNumber) String() string {
	return n.value
}

func (n IdentityNumber) MarshalText() ([]byte, error) {
	return []byte(n.value), nil
}

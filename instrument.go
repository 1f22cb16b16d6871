package kap

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultExemptionQuota is the partial exemption applied to instruments with
// no reference data: the equity fund quota (Aktienfonds, 30%).
var DefaultExemptionQuota = R(0.3)

// Instrument is the reference data about a traded security.
type Instrument struct {
	ISIN   string
	Symbol string
	Name   string
	// ExemptionQuota is the share of gains and income that is exempt from tax
	// (Teilfreistellung): 0 for stocks and bonds, 0.15 mixed funds, 0.3
	// equity funds, 0.6/0.8 real estate funds.
	ExemptionQuota Rate
}

// UnknownInstrument returns the conservative default for an ISIN without reference data.
func UnknownInstrument(isin, symbol string) Instrument {
	return Instrument{
		ISIN:           isin,
		Symbol:         symbol,
		Name:           "Auto-Generated",
		ExemptionQuota: DefaultExemptionQuota,
	}
}

// taxable applies the instrument's exemption to a raw amount.
func (i Instrument) taxable(raw Money) Money {
	return raw.MulRate(i.ExemptionQuota.Complement())
}

// isinRegex checks for the basic structure: 2 letters, 9 alphanumeric, 1 digit.
var isinRegex = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// ValidateISIN checks if a string is a validly formatted ISIN.
// It returns nil if valid, or a descriptive error if invalid.
func ValidateISIN(isin string) error {
	if len(isin) != 12 {
		return fmt.Errorf("invalid length: must be 12 characters, got %d", len(isin))
	}

	if !isinRegex.MatchString(isin) {
		return fmt.Errorf("invalid format: must be 2 uppercase letters, 9 alphanumeric chars, and 1 digit")
	}

	// Convert letters to numbers for check digit calculation
	var numericStr strings.Builder
	for _, char := range isin[:11] {
		if char >= 'A' && char <= 'Z' {
			numericStr.WriteString(strconv.Itoa(int(char - 'A' + 10)))
		} else {
			numericStr.WriteRune(char)
		}
	}

	// Luhn, starting from the rightmost digit.
	sum := 0
	isSecond := true
	digits := numericStr.String()
	for i := len(digits) - 1; i >= 0; i-- {
		digit := int(digits[i] - '0')
		if isSecond {
			digit *= 2
		}
		sum += (digit / 10) + (digit % 10)
		isSecond = !isSecond
	}

	expectedCheckDigit := (10 - (sum % 10)) % 10
	actualCheckDigit := int(isin[11] - '0')
	if expectedCheckDigit != actualCheckDigit {
		return fmt.Errorf("invalid check digit: expected %d, got %d", expectedCheckDigit, actualCheckDigit)
	}
	return nil
}

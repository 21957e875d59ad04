// Package format holds the Brazilian document/phone/currency formatting
// helpers shared by services and handlers.
package format

import (
	"fmt"
	"strings"
)

// Digits strips everything that is not a decimal digit.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// CPF formats an 11-digit CPF as XXX.XXX.XXX-XX.
// Inputs that are not 11 digits are returned unchanged.
func CPF(s string) string {
	d := Digits(s)
	if len(d) != 11 {
		return s
	}
	return fmt.Sprintf("%s.%s.%s-%s", d[:3], d[3:6], d[6:9], d[9:11])
}

// CNPJ formats a 14-digit CNPJ as XX.XXX.XXX/XXXX-XX.
// Inputs that are not 14 digits are returned unchanged.
func CNPJ(s string) string {
	d := Digits(s)
	if len(d) != 14 {
		return s
	}
	return fmt.Sprintf("%s.%s.%s/%s-%s", d[:2], d[2:5], d[5:8], d[8:12], d[12:14])
}

// Phone formats a phone number as (XX) XXXXX-XXXX, or
// +XX (XX) XXXXX-XXXX when a country code is present.
func Phone(s string) string {
	d := Digits(s)
	switch len(d) {
	case 11:
		return fmt.Sprintf("(%s) %s-%s", d[:2], d[2:7], d[7:11])
	case 13:
		return fmt.Sprintf("+%s (%s) %s-%s", d[:2], d[2:4], d[4:9], d[9:13])
	}
	return s
}

// ValidCPF reports whether the input normalizes to 11 digits.
func ValidCPF(s string) bool {
	return len(Digits(s)) == 11
}

// ValidCNPJ reports whether the input normalizes to 14 digits.
func ValidCNPJ(s string) bool {
	return len(Digits(s)) == 14
}

// BRL renders a value as "R$ 1234,56". The frontend shows locale-aware
// currency; this is only used in log/audit strings.
func BRL(v float64) string {
	return strings.Replace(fmt.Sprintf("R$ %.2f", v), ".", ",", 1)
}

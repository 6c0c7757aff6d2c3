package utils

import (
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^\d{10,11}$`)

// OnlyDigits strips every non-digit rune (the unmask step of all form inputs)
func OnlyDigits(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCNPJ applies the 00.000.000/0000-00 mask. Partial input is masked as far as it goes.
func FormatCNPJ(value string) string {
	return applyMask(OnlyDigits(value), []int{2, 3, 3, 4, 2}, []string{".", ".", "/", "-"})
}

// FormatCPF applies the 000.000.000-00 mask
func FormatCPF(value string) string {
	return applyMask(OnlyDigits(value), []int{3, 3, 3, 2}, []string{".", ".", "-"})
}

// FormatCEP applies the 00000-000 postal code mask
func FormatCEP(value string) string {
	return applyMask(OnlyDigits(value), []int{5, 3}, []string{"-"})
}

// FormatPhone applies (00) 0000-0000 or (00) 00000-0000
func FormatPhone(value string) string {
	digits := OnlyDigits(value)
	switch len(digits) {
	case 10:
		return "(" + digits[:2] + ") " + digits[2:6] + "-" + digits[6:]
	case 11:
		return "(" + digits[:2] + ") " + digits[2:7] + "-" + digits[7:]
	default:
		return digits
	}
}

// applyMask writes digits in groups, inserting separators between complete groups.
// Digits beyond the mask are dropped.
func applyMask(digits string, groups []int, seps []string) string {
	var b strings.Builder
	pos := 0
	for i, size := range groups {
		if pos >= len(digits) {
			break
		}
		if i > 0 {
			b.WriteString(seps[i-1])
		}
		end := pos + size
		if end > len(digits) {
			end = len(digits)
		}
		b.WriteString(digits[pos:end])
		pos = end
	}
	return b.String()
}

// ValidCNPJ checks length and both check digits of an unmasked CNPJ
func ValidCNPJ(cnpj string) bool {
	if len(cnpj) != 14 || OnlyDigits(cnpj) != cnpj || allSame(cnpj) {
		return false
	}

	first := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	second := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}

	return checkDigit(cnpj[:12], first) == int(cnpj[12]-'0') &&
		checkDigit(cnpj[:13], second) == int(cnpj[13]-'0')
}

// ValidCPF checks length and both check digits of an unmasked CPF
func ValidCPF(cpf string) bool {
	if len(cpf) != 11 || OnlyDigits(cpf) != cpf || allSame(cpf) {
		return false
	}

	first := []int{10, 9, 8, 7, 6, 5, 4, 3, 2}
	second := []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}

	return checkDigit(cpf[:9], first) == int(cpf[9]-'0') &&
		checkDigit(cpf[:10], second) == int(cpf[10]-'0')
}

// ValidCEP reports whether the unmasked postal code has 8 digits
func ValidCEP(cep string) bool {
	return len(cep) == 8 && OnlyDigits(cep) == cep
}

// ValidPhone reports whether the unmasked phone has 10 or 11 digits
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// mod-11 check digit shared by CPF and CNPJ
func checkDigit(digits string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

func allSame(s string) bool {
	return strings.Count(s, s[:1]) == len(s)
}

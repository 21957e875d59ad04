package format_test

import (
	"testing"

	"github.com/pixinxa/cashback-api/internal/format"
)

func TestCPF(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12345678901", "123.456.789-01"},
		{"123.456.789-01", "123.456.789-01"},
		{"1234567890", "1234567890"}, // too short, unchanged
		{"", ""},
	}
	for _, tt := range tests {
		if got := format.CPF(tt.in); got != tt.want {
			t.Errorf("CPF(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCNPJ(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12345678000199", "12.345.678/0001-99"},
		{"12.345.678/0001-99", "12.345.678/0001-99"},
		{"123456780001", "123456780001"}, // too short, unchanged
	}
	for _, tt := range tests {
		if got := format.CNPJ(tt.in); got != tt.want {
			t.Errorf("CNPJ(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"11912345678", "(11) 91234-5678"},
		{"5511912345678", "+55 (11) 91234-5678"},
		{"123", "123"},
	}
	for _, tt := range tests {
		if got := format.Phone(tt.in); got != tt.want {
			t.Errorf("Phone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDigits(t *testing.T) {
	if got := format.Digits("+55 (11) 91234-5678"); got != "5511912345678" {
		t.Errorf("Digits = %q", got)
	}
}

func TestValidDocuments(t *testing.T) {
	if !format.ValidCPF("123.456.789-01") {
		t.Error("expected formatted CPF to be valid")
	}
	if format.ValidCPF("123") {
		t.Error("expected short CPF to be invalid")
	}
	if !format.ValidCNPJ("12.345.678/0001-99") {
		t.Error("expected formatted CNPJ to be valid")
	}
}

func TestBRL(t *testing.T) {
	if got := format.BRL(20); got != "R$ 20,00" {
		t.Errorf("BRL(20) = %q", got)
	}
}

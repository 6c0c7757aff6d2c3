package utils

import "testing"

func TestCNPJMaskRoundTrip(t *testing.T) {
	raw := "11222333000181"

	masked := FormatCNPJ(raw)
	if masked != "11.222.333/0001-81" {
		t.Fatalf("FormatCNPJ(%q) = %q", raw, masked)
	}

	if got := OnlyDigits(masked); got != raw {
		t.Fatalf("OnlyDigits(%q) = %q, want %q", masked, got, raw)
	}
}

func TestMasks(t *testing.T) {
	tests := []struct {
		name   string
		format func(string) string
		in     string
		want   string
	}{
		{"cpf", FormatCPF, "52998224725", "529.982.247-25"},
		{"cpf already masked", FormatCPF, "529.982.247-25", "529.982.247-25"},
		{"cpf partial", FormatCPF, "5299", "529.9"},
		{"cnpj partial", FormatCNPJ, "112223", "11.222.3"},
		{"cnpj extra digits dropped", FormatCNPJ, "1122233300018199", "11.222.333/0001-81"},
		{"cep", FormatCEP, "01310100", "01310-100"},
		{"cep short", FormatCEP, "01310", "01310"},
		{"phone mobile", FormatPhone, "11987654321", "(11) 98765-4321"},
		{"phone landline", FormatPhone, "1133334444", "(11) 3333-4444"},
		{"empty", FormatCNPJ, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format(tt.in); got != tt.want {
				t.Errorf("format(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidCNPJ(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"11222333000181", true},
		{"11222333000182", false},
		{"11.222.333/0001-81", false}, // must be unmasked
		{"1122233300018", false},
		{"00000000000000", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidCNPJ(tt.in); got != tt.want {
			t.Errorf("ValidCNPJ(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidCPF(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"52998224725", true},
		{"52998224724", false},
		{"11111111111", false},
		{"5299822472", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidCPF(tt.in); got != tt.want {
			t.Errorf("ValidCPF(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidCEPAndPhone(t *testing.T) {
	if !ValidCEP("01310100") {
		t.Error("ValidCEP(01310100) = false")
	}
	if ValidCEP("01310-100") {
		t.Error("ValidCEP should reject masked input")
	}
	if !ValidPhone("11987654321") || !ValidPhone("1133334444") {
		t.Error("ValidPhone rejected a valid number")
	}
	if ValidPhone("119876543") || ValidPhone("119876543210") {
		t.Error("ValidPhone accepted a wrong length")
	}
}

package extract

import "testing"

func TestExtractCodes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantRef  string
		wantCode string
	}{
		{
			name:     "hyphenated reference and code",
			input:    "Pedido SOLTRANSP-2026-00231 ref 0001234567",
			wantRef:  "SOLTRANSP-2026-00231",
			wantCode: "0001234567",
		},
		{
			name:     "spaced reference",
			input:    "SOLTRANSP - 2026 - 00231",
			wantRef:  "SOLTRANSP - 2026 - 00231",
			wantCode: "",
		},
		{
			name:     "lowercase reference is uppercased",
			input:    "ver soltransp 2026 00231",
			wantRef:  "SOLTRANSP 2026 00231",
			wantCode: "",
		},
		{
			name:     "first match wins",
			input:    "1111111111 depois 2222222222 SOLTRANSP-2025-1 SOLTRANSP-2024-9",
			wantRef:  "SOLTRANSP-2025-1",
			wantCode: "1111111111",
		},
		{
			name:     "code embedded in longer digit run",
			input:    "chave 123456789012",
			wantRef:  "",
			wantCode: "1234567890",
		},
		{
			name:     "nine digits is not a code",
			input:    "123456789",
			wantRef:  "",
			wantCode: "",
		},
		{
			name:     "empty text",
			input:    "",
			wantRef:  "",
			wantCode: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, code := ExtractCodes(tt.input)
			if ref != tt.wantRef {
				t.Errorf("reference = %q, want %q", ref, tt.wantRef)
			}
			if code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

package message

import (
	"strings"
	"testing"
)

func TestValidate_Boundaries(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"spaces", "  ", false},
		{"whitespace mix", " \t\n ", false},
		{"one char", "a", true},
		{"greeting", "Hola mundo!", true},
		{"exactly limit", strings.Repeat("A", MaxBytes), true},
		{"one over limit", strings.Repeat("A", MaxBytes+1), false},
		// 342 three-byte runes = 1026 bytes although only 342 characters.
		{"multibyte over limit", strings.Repeat("⌘", 342), false},
		{"multibyte at limit", strings.Repeat("⌘", 341) + "a", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(tt.text); got != tt.want {
				t.Errorf("Validate(%d bytes) = %v, want %v", len(tt.text), got, tt.want)
			}
		})
	}
}

func TestValidator_CustomLimit(t *testing.T) {
	v := Validator{Limit: 5}
	if !v.Valid("hello") {
		t.Error("5 bytes should pass a 5 byte limit")
	}
	if v.Valid("hello!") {
		t.Error("6 bytes should fail a 5 byte limit")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    string
		wantErr bool
	}{
		{"plain", []byte("hello"), "hello", false},
		{"trimmed", []byte("  hello world \r\n"), "hello world", false},
		{"blank", []byte(" \n"), "", false},
		{"unicode", []byte("¡hola, 世界!"), "¡hola, 世界!", false},
		{"truncated rune", []byte{226, 140}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

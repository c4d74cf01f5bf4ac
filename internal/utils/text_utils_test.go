package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"
)

func TestDecodeBytes_DeclaredCharset(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	tests := []struct {
		name     string
		input    []byte
		charset  string
		expected string
	}{
		{"utf-8 passthrough", []byte("Привет мир"), "utf-8", "Привет мир"},
		{"latin-1 o acute", []byte("Mir\xf3 - Picasso"), "iso-8859-1", "Miró - Picasso"},
		{"windows-1252 smart quote", []byte("Rand\x92s Opponent"), "windows-1252", "Rand’s Opponent"},
		{"quoted label", []byte("M\xfcnchen"), `"ISO-8859-1"`, "München"},
		{"koi8-r", []byte{0xf0, 0xd2, 0xc9, 0xd7, 0xc5, 0xd4}, "koi8-r", "Привет"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tp.DecodeBytes(tt.input, tt.charset)
			if got != tt.expected {
				t.Errorf("DecodeBytes(%q, %q) = %q, want %q", tt.input, tt.charset, got, tt.expected)
			}
		})
	}
}

func TestDecodeBytes_UndeclaredValidUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	input := "Hello 世界! Привет!"
	if got := tp.DecodeBytes([]byte(input), ""); got != input {
		t.Errorf("DecodeBytes() = %q, want %q", got, input)
	}
}

func TestDecodeBytes_WrongDeclarationFallsBackToDetection(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	// Declared UTF-8 but the payload is Latin-1.
	input := []byte("Le gar\xe7on a mang\xe9 une cr\xeape au caf\xe9 pr\xe8s de la gare, c'\xe9tait tr\xe8s bon.")

	got := tp.DecodeBytes(input, "utf-8")
	if !utf8.ValidString(got) {
		t.Fatalf("DecodeBytes() returned invalid UTF-8: %q", got)
	}
	if !strings.HasPrefix(got, "Le gar") || !strings.Contains(got, "une cr") {
		t.Errorf("DecodeBytes() lost ASCII content: %q", got)
	}
}

func TestDecodeBytes_UnknownCharsetIsLossy(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	got := tp.DecodeBytes([]byte("plain text \xff\xfe end"), "x-no-such-charset")
	if !utf8.ValidString(got) {
		t.Fatalf("DecodeBytes() returned invalid UTF-8: %q", got)
	}
	if !strings.HasPrefix(got, "plain text") || !strings.HasSuffix(got, "end") {
		t.Errorf("DecodeBytes() = %q, want ASCII content preserved", got)
	}
}

func TestDecodeBytes_Empty(t *testing.T) {
	tp := NewTextProcessor(nil)
	if got := tp.DecodeBytes(nil, "utf-8"); got != "" {
		t.Errorf("DecodeBytes(nil) = %q, want empty", got)
	}
}

func TestPreview(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"within limit", "hello", 10, "hello"},
		{"cut", "hello world", 5, "hello"},
		{"runes not bytes", "日本語テキスト", 3, "日本語"},
		{"no limit", "hello", 0, "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tp.Preview(tt.input, tt.max); got != tt.want {
				t.Errorf("Preview(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
		})
	}
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	if got := tp.SanitizeUTF8("ok\xffok"); got != "okok" {
		t.Errorf("SanitizeUTF8() = %q, want %q", got, "okok")
	}
}

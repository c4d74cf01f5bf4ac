package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// TextProcessor provides utilities for decoding and shaping text
type TextProcessor struct {
	logger   *zap.Logger
	detector *chardet.Detector
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextProcessor{
		logger:   logger,
		detector: chardet.NewTextDetector(),
	}
}

// Preview returns at most maxRunes runes of text with no truncation marker
func (tp *TextProcessor) Preview(text string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxRunes])
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}

// DetectCharset guesses the character set of a payload from its byte
// frequencies. It returns "" when nothing could be detected.
func (tp *TextProcessor) DetectCharset(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	result, err := tp.detector.DetectBest(data)
	if err != nil || result == nil {
		return ""
	}
	return result.Charset
}

// DecodeBytes converts a payload to UTF-8. The declared charset is tried
// first; if it is unknown or does not decode cleanly, the charset is detected
// from the payload and decoded with invalid sequences replaced.
func (tp *TextProcessor) DecodeBytes(data []byte, declared string) string {
	if len(data) == 0 {
		return ""
	}

	declared = strings.TrimSpace(declared)
	if declared != "" {
		if text, ok := decodeWith(data, declared); ok {
			return text
		}
		tp.logger.Debug("Declared charset failed, detecting",
			zap.String("charset", declared),
			zap.Int("size", len(data)))
	} else if utf8.Valid(data) {
		return string(data)
	}

	if detected := tp.DetectCharset(data); detected != "" {
		if text, ok := decodeWith(data, detected); ok {
			return text
		}
	}

	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}

// LookupEncoding resolves a charset label using the WHATWG names first and the
// IANA registry second
func LookupEncoding(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.Trim(strings.TrimSpace(name), `"'`))
	if enc, err := htmlindex.Get(label); err == nil {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, encoding.ErrInvalidUTF8
	}
	return enc, nil
}

func decodeWith(data []byte, charset string) (string, bool) {
	enc, err := LookupEncoding(charset)
	if err != nil {
		return "", false
	}

	// The UTF-8 decoder substitutes instead of failing, so validate up front.
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		if !utf8.Valid(data) {
			return "", false
		}
		return string(data), true
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil || !utf8.Valid(out) {
		return "", false
	}
	return string(out), true
}

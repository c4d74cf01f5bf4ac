package mailparse

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/jhillyerd/enmime"

	"github.com/mikey/llm-style-responder/internal/utils"
)

// Names reported in NormalizedMessage.ExtractedBy
const (
	StrategyParts    = "parts"
	StrategyEnvelope = "envelope"
	StrategyMessage  = "message"
	StrategyRaw      = "raw"
)

// maxPartSize caps how much of a single part the message strategy reads
const maxPartSize = 10 * 1024 * 1024

// parseState is what the strategies share for one message
type parseState struct {
	raw  []byte
	env  *enmime.Envelope
	text *utils.TextProcessor

	// message is filled lazily by the message strategy
	msgReader *mail.Reader
	msgErr    error
	msgDone   bool

	// sawAttachment is set once a structured parser found an attachment part
	sawAttachment bool
}

// extractor returns the body it found, or "" to fall through
type extractor func(st *parseState) string

type strategy struct {
	name    string
	extract extractor
}

// strategies run in order; the first non-empty body wins
var strategies = []strategy{
	{StrategyParts, extractParts},
	{StrategyEnvelope, extractEnvelope},
	{StrategyMessage, extractMessage},
	{StrategyRaw, extractRaw},
}

func extractBody(st *parseState) (string, string) {
	for _, s := range strategies {
		if body := strings.TrimSpace(s.extract(st)); body != "" {
			return body, s.name
		}
	}
	return "", ""
}

// extractParts walks the enmime part tree depth-first, skipping attachments.
// All text/plain content is accumulated; the first text/html part is the
// fallback.
func extractParts(st *parseState) string {
	if st.env == nil || st.env.Root == nil {
		return ""
	}

	var plain []string
	var html string
	walkParts(st.env.Root, func(p *enmime.Part) {
		if isAttachment(p.Disposition) {
			st.sawAttachment = true
			return
		}
		switch strings.ToLower(p.ContentType) {
		case "text/plain":
			if text := strings.TrimSpace(st.decodePart(p.Content, p.Charset)); text != "" {
				plain = append(plain, text)
			}
		case "text/html":
			if html == "" {
				html = st.decodePart(p.Content, p.Charset)
			}
		}
	})

	if len(plain) > 0 {
		return strings.Join(plain, "\n")
	}
	if html != "" {
		return StripTags(html)
	}
	return ""
}

func walkParts(p *enmime.Part, visit func(*enmime.Part)) {
	for ; p != nil; p = p.NextSibling {
		if p.FirstChild != nil {
			walkParts(p.FirstChild, visit)
			continue
		}
		visit(p)
	}
}

// extractEnvelope uses the text the envelope itself exposes
func extractEnvelope(st *parseState) string {
	if st.env == nil {
		return ""
	}
	if text := strings.TrimSpace(st.env.Text); text != "" {
		return st.text.SanitizeUTF8(text)
	}
	if st.env.HTML != "" {
		return StripTags(st.text.SanitizeUTF8(st.env.HTML))
	}
	return ""
}

// extractMessage re-parses the bytes with go-message, which models some MIME
// structures differently from enmime
func extractMessage(st *parseState) string {
	mr, _ := st.messageReader()
	if mr == nil {
		return ""
	}

	var plain []string
	var html string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && (part == nil || !(message.IsUnknownCharset(err) || message.IsUnknownEncoding(err))) {
			break
		}

		inline, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			st.sawAttachment = true
			continue
		}
		contentType, params, _ := inline.ContentType()
		disposition, _, _ := inline.ContentDisposition()
		if isAttachment(disposition) {
			st.sawAttachment = true
			continue
		}

		data, readErr := io.ReadAll(io.LimitReader(part.Body, maxPartSize))
		if readErr != nil && len(data) == 0 {
			continue
		}

		switch strings.ToLower(contentType) {
		case "text/plain", "":
			if text := strings.TrimSpace(st.decodePart(data, params["charset"])); text != "" {
				plain = append(plain, text)
			}
		case "text/html":
			if html == "" {
				html = st.decodePart(data, params["charset"])
			}
		}
	}

	if len(plain) > 0 {
		return strings.Join(plain, "\n")
	}
	if html != "" {
		return StripTags(html)
	}
	return ""
}

// extractRaw treats the bytes as a flat blob and takes everything after the
// first blank line. An attachment-only message has no body, so it is not
// split.
func extractRaw(st *parseState) string {
	if st.sawAttachment {
		return ""
	}
	body, ok := splitAtBlankLine(st.raw)
	if !ok {
		return ""
	}
	return st.text.DecodeBytes(body, "")
}

// splitAtBlankLine returns the bytes after whichever of "\n\n" or "\r\n\r\n"
// occurs first
func splitAtBlankLine(raw []byte) ([]byte, bool) {
	lf := bytes.Index(raw, []byte("\n\n"))
	crlf := bytes.Index(raw, []byte("\r\n\r\n"))

	switch {
	case lf < 0 && crlf < 0:
		return nil, false
	case crlf >= 0 && (lf < 0 || crlf < lf):
		return raw[crlf+4:], true
	default:
		return raw[lf+2:], true
	}
}

// messageReader parses the message with go-message once per state. An
// unknown charset or encoding still yields a usable reader.
func (st *parseState) messageReader() (*mail.Reader, error) {
	if !st.msgDone {
		st.msgDone = true
		mr, err := mail.CreateReader(bytes.NewReader(st.raw))
		if err != nil && !message.IsUnknownCharset(err) && !message.IsUnknownEncoding(err) {
			mr = nil
		}
		st.msgReader, st.msgErr = mr, err
	}
	return st.msgReader, st.msgErr
}

// decodePart returns payloads that are already UTF-8 unchanged, and decodes
// anything else with the declared or detected charset
func (st *parseState) decodePart(data []byte, charset string) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return st.text.DecodeBytes(data, charset)
}

func isAttachment(disposition string) bool {
	return strings.EqualFold(strings.TrimSpace(disposition), "attachment")
}

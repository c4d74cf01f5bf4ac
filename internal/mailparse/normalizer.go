package mailparse

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jhillyerd/enmime"
	"go.uber.org/zap"

	"github.com/mikey/llm-style-responder/internal/core"
	"github.com/mikey/llm-style-responder/internal/utils"
)

// UnknownSender is the sender recorded on placeholder records
const UnknownSender = "unknown"

var errUnreadable = errors.New("no headers or body could be read")

// Normalizer turns raw .eml bytes into NormalizedMessage records
type Normalizer struct {
	text   *utils.TextProcessor
	logger *zap.Logger
}

// NewNormalizer creates a new message normalizer
func NewNormalizer(text *utils.TextProcessor, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if text == nil {
		text = utils.NewTextProcessor(logger)
	}
	return &Normalizer{
		text:   text,
		logger: logger,
	}
}

// Normalize parses one message. It never panics: a message that cannot be
// read at all comes back as a placeholder with BodyStatus BodyParseFailed.
// A message that parses but has no body text comes back with BodyMissing.
func (n *Normalizer) Normalize(raw []byte, filename string) (msg core.NormalizedMessage) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Recovered from panic while normalizing email",
				zap.String("filename", filename),
				zap.Any("panic", r))
			msg = Placeholder(filename, fmt.Errorf("panic: %v", r))
		}
	}()

	st := &parseState{raw: raw, text: n.text}

	env, envErr := enmime.ReadEnvelope(bytes.NewReader(raw))
	if envErr != nil {
		n.logger.Debug("Structured parse failed, trying alternate parsers",
			zap.String("filename", filename),
			zap.Error(envErr))
	} else {
		st.env = env
	}

	headers := n.readHeaders(st)
	body, extractedBy := extractBody(st)

	if headers.empty() && body == "" {
		cause := envErr
		if cause == nil {
			cause = errUnreadable
		}
		return Placeholder(filename, cause)
	}

	msg = core.NormalizedMessage{
		Filename:    filename,
		Sender:      n.text.SanitizeUTF8(headers.From),
		Recipients:  headers.To,
		Cc:          headers.Cc,
		Subject:     n.text.SanitizeUTF8(headers.Subject),
		SentAt:      headers.Date,
		Body:        body,
		MessageID:   headers.MessageID,
		BodyStatus:  core.BodyExtracted,
		ExtractedBy: extractedBy,
	}
	if body == "" {
		msg.BodyStatus = core.BodyMissing
	}
	if envErr != nil {
		msg.ParseError = envErr.Error()
	}
	msg.Fingerprint = Fingerprint(msg.Subject, msg.Sender, msg.Body)

	n.logger.Debug("Normalized email",
		zap.String("filename", filename),
		zap.String("sender", msg.Sender),
		zap.String("body_status", msg.BodyStatus.String()),
		zap.String("extracted_by", extractedBy),
		zap.Int("body_length", len(body)))

	return msg
}

// readHeaders takes the first parser that produced any header
func (n *Normalizer) readHeaders(st *parseState) headerSet {
	if st.env != nil {
		if h := headersFromEnvelope(st.env); !h.empty() {
			return h
		}
	}
	if mr, _ := st.messageReader(); mr != nil {
		if h := headersFromMessage(mr.Header); !h.empty() {
			return h
		}
	}
	return scanHeaders(st.raw)
}

// Placeholder is the record substituted for an input that could not be
// processed at all
func Placeholder(filename string, cause error) core.NormalizedMessage {
	reason := "unknown error"
	if cause != nil {
		reason = cause.Error()
	}
	msg := core.NormalizedMessage{
		Filename:   filename,
		Sender:     UnknownSender,
		Subject:    "Error: " + filename,
		Body:       "Error processing email: " + reason,
		BodyStatus: core.BodyParseFailed,
		ParseError: reason,
	}
	msg.Fingerprint = Fingerprint(msg.Subject, msg.Sender, msg.Body)
	return msg
}

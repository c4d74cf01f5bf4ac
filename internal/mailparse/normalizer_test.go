package mailparse

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jhillyerd/enmime"
	"go.uber.org/zap"

	"github.com/mikey/llm-style-responder/internal/core"
	"github.com/mikey/llm-style-responder/internal/utils"
)

func newTestNormalizer() *Normalizer {
	logger := zap.NewNop()
	return NewNormalizer(utils.NewTextProcessor(logger), logger)
}

const plainMessage = "From: Commander Spock <spock@enterprise.starfleet>\n" +
	"To: kirk@enterprise.starfleet, Leonard McCoy <mccoy@enterprise.starfleet>\n" +
	"Cc: uhura@enterprise.starfleet\n" +
	"Subject: Sensor readings\n" +
	"Date: Mon, 2 Jan 2006 15:04:05 -0700\n" +
	"Message-ID: <readings-1@enterprise.starfleet>\n" +
	"Content-Type: text/plain; charset=utf-8\n" +
	"\n" +
	"Captain, the readings are fascinating.\n" +
	"Live long and prosper.\n"

func TestNormalize_PlainText(t *testing.T) {
	n := newTestNormalizer()
	msg := n.Normalize([]byte(plainMessage), "readings.eml")

	if msg.Filename != "readings.eml" {
		t.Errorf("Filename = %q, want %q", msg.Filename, "readings.eml")
	}
	if msg.Sender != "Commander Spock <spock@enterprise.starfleet>" {
		t.Errorf("Sender = %q", msg.Sender)
	}
	if msg.Subject != "Sensor readings" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if msg.SentAt != "Mon, 2 Jan 2006 15:04:05 -0700" {
		t.Errorf("SentAt = %q", msg.SentAt)
	}
	if msg.MessageID != "<readings-1@enterprise.starfleet>" {
		t.Errorf("MessageID = %q", msg.MessageID)
	}
	if len(msg.Recipients) != 2 {
		t.Fatalf("Recipients = %v, want 2 entries", msg.Recipients)
	}
	if msg.Recipients[0] != "kirk@enterprise.starfleet" {
		t.Errorf("Recipients[0] = %q", msg.Recipients[0])
	}
	if !strings.Contains(msg.Recipients[1], "mccoy@enterprise.starfleet") {
		t.Errorf("Recipients[1] = %q", msg.Recipients[1])
	}
	if len(msg.Cc) != 1 || msg.Cc[0] != "uhura@enterprise.starfleet" {
		t.Errorf("Cc = %v", msg.Cc)
	}

	want := "Captain, the readings are fascinating.\nLive long and prosper."
	if msg.Body != want {
		t.Errorf("Body = %q, want %q", msg.Body, want)
	}
	if msg.BodyStatus != core.BodyExtracted {
		t.Errorf("BodyStatus = %v, want extracted", msg.BodyStatus)
	}
	if msg.ExtractedBy == "" {
		t.Error("ExtractedBy should name the winning strategy")
	}
	if msg.Fingerprint != Fingerprint(msg.Subject, msg.Sender, msg.Body) {
		t.Error("Fingerprint does not match subject+sender+body")
	}
}

func TestNormalize_MultipartSkipsAttachments(t *testing.T) {
	raw := "From: scotty@enterprise.starfleet\r\n" +
		"To: kirk@enterprise.starfleet\r\n" +
		"Subject: Engine report\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/mixed; boundary=\"XYZ\"\r\n" +
		"\r\n" +
		"--XYZ\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"She cannae take much more, Captain.\r\n" +
		"--XYZ\r\n" +
		"Content-Type: text/plain; name=\"log.txt\"\r\n" +
		"Content-Disposition: attachment; filename=\"log.txt\"\r\n" +
		"\r\n" +
		"ATTACHED DILITHIUM LOG\r\n" +
		"--XYZ--\r\n"

	msg := newTestNormalizer().Normalize([]byte(raw), "engine.eml")

	if !strings.Contains(msg.Body, "She cannae take much more, Captain.") {
		t.Errorf("Body = %q, want the inline text part", msg.Body)
	}
	if strings.Contains(msg.Body, "DILITHIUM") {
		t.Errorf("Body = %q, attachment content leaked", msg.Body)
	}
	if msg.Subject != "Engine report" {
		t.Errorf("Subject = %q", msg.Subject)
	}
}

func TestNormalize_HTMLOnly(t *testing.T) {
	raw := "From: sulu@enterprise.starfleet\n" +
		"Subject: Helm\n" +
		"MIME-Version: 1.0\n" +
		"Content-Type: multipart/alternative; boundary=\"b1\"\n" +
		"\n" +
		"--b1\n" +
		"Content-Type: text/html; charset=utf-8\n" +
		"\n" +
		"<b>Hello</b> world\n" +
		"--b1--\n"

	msg := newTestNormalizer().Normalize([]byte(raw), "helm.eml")

	if !strings.Contains(msg.Body, "Hello world") {
		t.Errorf("Body = %q, want it to contain %q", msg.Body, "Hello world")
	}
	if strings.ContainsAny(msg.Body, "<>") {
		t.Errorf("Body = %q, markup was not stripped", msg.Body)
	}
	if msg.BodyStatus != core.BodyExtracted {
		t.Errorf("BodyStatus = %v, want extracted", msg.BodyStatus)
	}
}

func TestNormalize_AttachmentOnlyHasNoBody(t *testing.T) {
	raw := "From: chekov@enterprise.starfleet\n" +
		"Subject: Star charts\n" +
		"MIME-Version: 1.0\n" +
		"Content-Type: multipart/mixed; boundary=\"cc\"\n" +
		"\n" +
		"--cc\n" +
		"Content-Type: application/octet-stream\n" +
		"Content-Disposition: attachment; filename=\"charts.bin\"\n" +
		"Content-Transfer-Encoding: base64\n" +
		"\n" +
		"AAECAwQF\n" +
		"--cc--\n"

	msg := newTestNormalizer().Normalize([]byte(raw), "charts.eml")

	if msg.Body != "" {
		t.Errorf("Body = %q, want empty", msg.Body)
	}
	if msg.BodyStatus != core.BodyMissing {
		t.Errorf("BodyStatus = %v, want missing", msg.BodyStatus)
	}
	if msg.Sender != "chekov@enterprise.starfleet" {
		t.Errorf("Sender = %q", msg.Sender)
	}
}

func TestNormalize_HeadersOnlyIsMissingNotFailed(t *testing.T) {
	msg := newTestNormalizer().Normalize([]byte("From: rand@enterprise.starfleet\nSubject: (none)\n\n"), "empty-body.eml")

	if msg.BodyStatus != core.BodyMissing {
		t.Errorf("BodyStatus = %v, want missing", msg.BodyStatus)
	}
	if msg.Body != "" {
		t.Errorf("Body = %q, want empty", msg.Body)
	}
	if msg.ExtractedBy != "" {
		t.Errorf("ExtractedBy = %q, want empty", msg.ExtractedBy)
	}
}

func TestNormalize_DeclaredLatin1(t *testing.T) {
	raw := "From: picard@enterprise.starfleet\n" +
		"Subject: Tea\n" +
		"Content-Type: text/plain; charset=iso-8859-1\n" +
		"Content-Transfer-Encoding: 8bit\n" +
		"\n" +
		"Th\xe9 Earl Grey, chaud.\n"

	msg := newTestNormalizer().Normalize([]byte(raw), "tea.eml")

	if msg.Body != "Thé Earl Grey, chaud." {
		t.Errorf("Body = %q, want %q", msg.Body, "Thé Earl Grey, chaud.")
	}
}

func TestNormalize_CRLF(t *testing.T) {
	raw := "From: data@enterprise.starfleet\r\nSubject: Query\r\n\r\nI am curious.\r\n"
	msg := newTestNormalizer().Normalize([]byte(raw), "query.eml")

	if msg.Body != "I am curious." {
		t.Errorf("Body = %q, want %q", msg.Body, "I am curious.")
	}
	if msg.Subject != "Query" {
		t.Errorf("Subject = %q", msg.Subject)
	}
}

func TestNormalize_FingerprintIsStable(t *testing.T) {
	n := newTestNormalizer()
	first := n.Normalize([]byte(plainMessage), "a.eml")
	second := n.Normalize([]byte(plainMessage), "b.eml")

	if first.Fingerprint == "" {
		t.Fatal("Fingerprint is empty")
	}
	if first.Fingerprint != second.Fingerprint {
		t.Errorf("Fingerprint differs for identical bytes: %q vs %q", first.Fingerprint, second.Fingerprint)
	}

	changed := n.Normalize([]byte(strings.Replace(plainMessage, "fascinating", "illogical", 1)), "c.eml")
	if changed.Fingerprint == first.Fingerprint {
		t.Error("Fingerprint should change when the body changes")
	}
}

func TestNormalize_NeverPanics(t *testing.T) {
	n := newTestNormalizer()

	inputs := map[string][]byte{
		"binary.eml":         {0x00, 0xff, 0xfe, 0x01, 0x80, 0x0a, 0x0a, 0xc3, 0x28, 0x00},
		"broken-mime.eml":    []byte("Content-Type: multipart/mixed; boundary=\n\n--\n--\n"),
		"no-separator.eml":   []byte("this is not an email at all"),
		"header-garbage.eml": []byte(":::\n: :\n\n\xff\xfe body"),
		"truncated.eml":      []byte("From: x@y\nContent-Type: multipart/mixed; boundary=\"q\"\n\n--q\nContent-Type: text/plain\n\nunterminated"),
	}

	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			msg := n.Normalize(raw, name)
			if msg.Filename != name {
				t.Errorf("Filename = %q, want %q", msg.Filename, name)
			}
			if !utf8.ValidString(msg.Body) {
				t.Errorf("Body is not valid UTF-8: %q", msg.Body)
			}
			if !utf8.ValidString(msg.Subject) || !utf8.ValidString(msg.Sender) {
				t.Errorf("headers are not valid UTF-8: %q / %q", msg.Subject, msg.Sender)
			}
			if msg.Fingerprint == "" {
				t.Error("Fingerprint should always be computed")
			}
		})
	}
}

func TestNormalize_EmptyInputIsPlaceholder(t *testing.T) {
	msg := newTestNormalizer().Normalize(nil, "empty.eml")

	if msg.BodyStatus != core.BodyParseFailed {
		t.Fatalf("BodyStatus = %v, want parse_failed", msg.BodyStatus)
	}
	if msg.Sender != UnknownSender {
		t.Errorf("Sender = %q, want %q", msg.Sender, UnknownSender)
	}
	if msg.Subject != "Error: empty.eml" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if !strings.HasPrefix(msg.Body, "Error processing email: ") {
		t.Errorf("Body = %q", msg.Body)
	}
}

func TestPlaceholder(t *testing.T) {
	msg := Placeholder("bad.eml", nil)

	if msg.Body != "Error processing email: unknown error" {
		t.Errorf("Body = %q", msg.Body)
	}
	if msg.Fingerprint != Fingerprint("Error: bad.eml", UnknownSender, msg.Body) {
		t.Error("placeholder fingerprint mismatch")
	}
	if msg.HasBody() {
		t.Error("placeholder must not report a real body")
	}
}

func TestNormalize_FallsBackToRawSplit(t *testing.T) {
	// The declared boundary never appears, so no structured parser finds a part.
	raw := "From: sulu@enterprise.starfleet\n" +
		"Subject: Helm status\n" +
		"Content-Type: multipart/mixed; boundary=\"ZZZ\"\n" +
		"\n" +
		"Hello there body\n"

	msg := newTestNormalizer().Normalize([]byte(raw), "helm.eml")

	if msg.ExtractedBy != StrategyRaw {
		t.Errorf("ExtractedBy = %q, want %q", msg.ExtractedBy, StrategyRaw)
	}
	if msg.BodyStatus != core.BodyExtracted {
		t.Errorf("BodyStatus = %v, want extracted", msg.BodyStatus)
	}
	if msg.Body != "Hello there body" {
		t.Errorf("Body = %q, want the text after the first blank line", msg.Body)
	}
	if msg.Sender != "sulu@enterprise.starfleet" || msg.Subject != "Helm status" {
		t.Errorf("headers = %q / %q", msg.Sender, msg.Subject)
	}
}

func TestExtractBody_StrategyOrder(t *testing.T) {
	tp := utils.NewTextProcessor(zap.NewNop())

	tests := []struct {
		name     string
		st       *parseState
		wantBody string
		wantBy   string
	}{
		{
			name: "envelope text when the part tree is empty",
			st: &parseState{
				raw:  []byte("Subject: x\n\nraw tail"),
				env:  &enmime.Envelope{Text: "  envelope text  "},
				text: tp,
			},
			wantBody: "envelope text",
			wantBy:   StrategyEnvelope,
		},
		{
			name: "envelope html when there is no text",
			st: &parseState{
				raw:  []byte("Subject: x\n\nraw tail"),
				env:  &enmime.Envelope{HTML: "<p>Hailing <b>frequencies</b> open</p>"},
				text: tp,
			},
			wantBody: "Hailing frequencies open",
			wantBy:   StrategyEnvelope,
		},
		{
			name: "second parser when enmime produced nothing",
			st: &parseState{
				raw: []byte("From: uhura@enterprise.starfleet\r\n" +
					"Content-Type: text/plain; charset=utf-8\r\n" +
					"\r\n" +
					"Hailing frequencies open.\r\n"),
				text: tp,
			},
			wantBody: "Hailing frequencies open.",
			wantBy:   StrategyMessage,
		},
		{
			name:     "nothing found",
			st:       &parseState{raw: []byte("no separator"), text: tp},
			wantBody: "",
			wantBy:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, by := extractBody(tt.st)
			if body != tt.wantBody || by != tt.wantBy {
				t.Errorf("extractBody() = %q by %q, want %q by %q", body, by, tt.wantBody, tt.wantBy)
			}
		})
	}
}

func TestExtractRaw(t *testing.T) {
	tp := utils.NewTextProcessor(zap.NewNop())

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lf", "X-Broken: yes\n\nthe body\nline two", "the body\nline two"},
		{"crlf", "X-Broken: yes\r\n\r\nthe body", "the body"},
		{"first separator wins", "A: b\n\nfirst\r\n\r\nsecond", "first\r\n\r\nsecond"},
		{"crlf before lf", "A: b\r\n\r\nbody\n\ntail", "body\n\ntail"},
		{"no separator", "just one line", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &parseState{raw: []byte(tt.raw), text: tp}
			if got := extractRaw(st); got != tt.want {
				t.Errorf("extractRaw() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScanHeaders(t *testing.T) {
	raw := "Subject: Folded\n  subject line\nFrom: Spock <spock@vulcan.example>\nTo: a@x, , b@y\nnot a header\n\nFrom: ignored@body"
	h := scanHeaders([]byte(raw))

	if h.Subject != "Folded subject line" {
		t.Errorf("Subject = %q", h.Subject)
	}
	if h.From != "Spock <spock@vulcan.example>" {
		t.Errorf("From = %q", h.From)
	}
	if len(h.To) != 2 || h.To[0] != "a@x" || h.To[1] != "b@y" {
		t.Errorf("To = %v, want [a@x b@y]", h.To)
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<b>Hello</b> world", "Hello world"},
		{"<p class=\"x\">Line</p>\n<br/>", "Line"},
		{"no markup", "no markup"},
	}
	for _, tt := range tests {
		if got := StripTags(tt.in); got != tt.want {
			t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

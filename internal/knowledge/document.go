package knowledge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mikey/llm-style-responder/internal/core"
)

const (
	bodyStartMarker = "=== FULL EMAIL CONTENT ==="
	bodyEndMarker   = "=== END OF EMAIL ==="
)

// Metadata keys stored alongside each document
const (
	MetaFilename       = "filename"
	MetaSender         = "sender"
	MetaSubject        = "subject"
	MetaDate           = "date"
	MetaMessageID      = "message_id"
	MetaBodyPreview    = "body_preview"
	MetaFullBodyLength = "full_body_length"
	MetaFingerprint    = "fingerprint"
)

// documentNamespace seeds the deterministic document IDs
var documentNamespace = uuid.MustParse("6f1c2a9e-43b7-4f57-9a43-5c8d0f6e2b11")

// DocumentID derives a stable ID for a message, so re-indexing the same
// corpus replaces documents instead of duplicating them
func DocumentID(msg *core.NormalizedMessage) string {
	return uuid.NewSHA1(documentNamespace, []byte(msg.Filename+"\x00"+msg.Fingerprint)).String()
}

// BuildDocument renders a message as a similarity-store document: a header
// block, the full body between markers and an author-style footer.
func BuildDocument(msg *core.NormalizedMessage, bodyPreview string) core.Document {
	var b strings.Builder
	fmt.Fprintf(&b, "=== EMAIL FROM: %s ===\n", msg.Sender)
	fmt.Fprintf(&b, "To: %s\n", strings.Join(msg.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\n\n", msg.SentAt)
	b.WriteString(bodyStartMarker + "\n")
	b.WriteString(msg.Body)
	b.WriteString("\n" + bodyEndMarker + "\n\n")
	fmt.Fprintf(&b, "Author Writing Style: %s\n", msg.Sender)
	fmt.Fprintf(&b, "This email demonstrates the unique writing style, vocabulary, and mannerisms of %s.", msg.Sender)

	return core.Document{
		ID:   DocumentID(msg),
		Text: b.String(),
		Metadata: map[string]string{
			MetaFilename:       msg.Filename,
			MetaSender:         msg.Sender,
			MetaSubject:        msg.Subject,
			MetaDate:           msg.SentAt,
			MetaMessageID:      msg.MessageID,
			MetaBodyPreview:    bodyPreview,
			MetaFullBodyLength: strconv.Itoa(len([]rune(msg.Body))),
			MetaFingerprint:    msg.Fingerprint,
		},
	}
}

// BodyFromText recovers the full body from a document built by BuildDocument
func BodyFromText(text string) (string, bool) {
	start := strings.Index(text, bodyStartMarker+"\n")
	if start < 0 {
		return "", false
	}
	rest := text[start+len(bodyStartMarker)+1:]
	end := strings.LastIndex(rest, "\n"+bodyEndMarker)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// exampleFromDocument projects a stored document back into a retrieved example
func exampleFromDocument(doc core.ScoredDocument, rank int) core.RetrievedExample {
	meta := doc.Metadata
	body, ok := BodyFromText(doc.Text)
	if !ok {
		body = meta[MetaBodyPreview]
	}
	return core.RetrievedExample{
		Filename: meta[MetaFilename],
		Sender:   meta[MetaSender],
		Subject:  meta[MetaSubject],
		Date:     meta[MetaDate],
		Body:     body,
		Rank:     rank,
		Score:    doc.Score,
	}
}

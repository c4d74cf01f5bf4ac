package core

// RawMessage is a raw email byte stream plus the label it was loaded under.
// Err is set when the input could not be read at all.
type RawMessage struct {
	Filename string
	Data     []byte
	Err      error
}

// BodyStatus records how body extraction ended for a message
type BodyStatus int

const (
	// BodyExtracted means one of the extraction strategies produced text
	BodyExtracted BodyStatus = iota
	// BodyMissing means every extraction strategy came back empty
	BodyMissing
	// BodyParseFailed means the message could not be parsed and Body holds a diagnostic
	BodyParseFailed
)

// String returns the status name used in logs and console output
func (s BodyStatus) String() string {
	switch s {
	case BodyExtracted:
		return "extracted"
	case BodyMissing:
		return "missing"
	case BodyParseFailed:
		return "parse_failed"
	default:
		return "unknown"
	}
}

// NormalizedMessage is the unit of record of a corpus. It is never mutated
// after the normalizer returns it.
type NormalizedMessage struct {
	Filename    string
	Sender      string
	Recipients  []string
	Cc          []string
	Subject     string
	SentAt      string
	Body        string
	MessageID   string
	Fingerprint string

	BodyStatus  BodyStatus
	ExtractedBy string
	ParseError  string
	DuplicateOf string
}

// HasBody reports whether the message carries real body text
func (m *NormalizedMessage) HasBody() bool {
	return m.BodyStatus == BodyExtracted && m.Body != ""
}

// Corpus is an ordered collection of normalized messages, in processing order
type Corpus []NormalizedMessage

// Clone returns a copy of the corpus slice
func (c Corpus) Clone() Corpus {
	if c == nil {
		return nil
	}
	out := make(Corpus, len(c))
	copy(out, c)
	return out
}

// Identity is the inferred address of the corpus owner
type Identity struct {
	Address    string
	Count      int
	Total      int
	Confidence float64
}

// RetrievedExample is a read-only projection of a stored message returned by
// a knowledge store. Body always holds the full text.
type RetrievedExample struct {
	Filename string
	Sender   string
	Subject  string
	Date     string
	Body     string
	Rank     int
	Score    float64
}

// Document is the unit exchanged with a similarity store
type Document struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// ScoredDocument is a similarity store hit
type ScoredDocument struct {
	Document
	Score float64
}

// ResponseStyle is the style modifier requested for a generated response
type ResponseStyle string

const (
	StyleProfessional ResponseStyle = "professional"
	StyleFriendly     ResponseStyle = "friendly"
	StyleBrief        ResponseStyle = "brief"
	StyleDetailed     ResponseStyle = "detailed"
)

// MessageType tags the kind of incoming message being answered
type MessageType string

const (
	MessageGeneral           MessageType = "general"
	MessageExternalClient    MessageType = "external_client"
	MessageInternalColleague MessageType = "internal_colleague"
	MessageDiscussion        MessageType = "discussion"
	MessageRequest           MessageType = "request"
	MessageUpdate            MessageType = "update"
)

// GenerationRequest carries everything the prompt assembler needs
type GenerationRequest struct {
	IncomingText  string
	SenderAddress string
	Style         ResponseStyle
	MessageType   MessageType
	IsInternal    bool
	UserIdentity  string
	Examples      []RetrievedExample
}

// GenerationResult is returned for every generation attempt. Success is false
// whenever Error is set; Response is never filled on failure.
type GenerationResult struct {
	Success    bool
	Response   string
	Sources    []RetrievedExample
	Mode       string
	Confidence string
	Error      string
}

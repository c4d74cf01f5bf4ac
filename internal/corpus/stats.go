package corpus

import (
	"net/mail"
	"strings"
	"time"

	"github.com/mikey/llm-style-responder/internal/core"
)

// Stats summarizes a corpus
type Stats struct {
	Total             int
	UniqueSenders     int
	WithBody          int
	MissingBody       int
	Failed            int
	Duplicates        int
	AverageBodyLength int
	// Earliest and Latest cover only the dates that parse; zero when none do
	Earliest time.Time
	Latest   time.Time
}

// Summarize computes corpus statistics
func Summarize(c core.Corpus) Stats {
	stats := Stats{Total: len(c)}
	senders := make(map[string]struct{})
	bodyChars := 0

	for i := range c {
		msg := &c[i]
		switch msg.BodyStatus {
		case core.BodyParseFailed:
			stats.Failed++
			continue
		case core.BodyMissing:
			stats.MissingBody++
		default:
			if msg.Body == "" {
				stats.MissingBody++
			} else {
				stats.WithBody++
				bodyChars += len([]rune(msg.Body))
			}
		}

		if msg.DuplicateOf != "" {
			stats.Duplicates++
		}
		if addr := core.NormalizeAddress(msg.Sender); addr != "" {
			senders[addr] = struct{}{}
		}

		if sent, ok := ParseDate(msg.SentAt); ok {
			if stats.Earliest.IsZero() || sent.Before(stats.Earliest) {
				stats.Earliest = sent
			}
			if stats.Latest.IsZero() || sent.After(stats.Latest) {
				stats.Latest = sent
			}
		}
	}

	stats.UniqueSenders = len(senders)
	if stats.WithBody > 0 {
		stats.AverageBodyLength = bodyChars / stats.WithBody
	}
	return stats
}

// ParseDate parses an RFC 5322 date header value
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	t, err := mail.ParseDate(value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

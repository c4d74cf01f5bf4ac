package core

import (
	"strings"
)

// SearchCorpus returns the messages where any field contains term,
// case-insensitively. An empty term matches everything.
func SearchCorpus(corpus Corpus, term string) Corpus {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return corpus.Clone()
	}

	var out Corpus
	for _, msg := range corpus {
		if messageContains(&msg, needle) {
			out = append(out, msg)
		}
	}
	return out
}

func messageContains(msg *NormalizedMessage, needle string) bool {
	fields := []string{msg.Filename, msg.Sender, msg.Subject, msg.SentAt, msg.Body, msg.MessageID}
	fields = append(fields, msg.Recipients...)
	fields = append(fields, msg.Cc...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

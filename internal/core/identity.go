package core

import (
	"strings"
)

// IdentityThreshold is the share of sender-bearing messages the top sender
// must exceed before it is claimed as the corpus owner
const IdentityThreshold = 0.3

// NormalizeAddress extracts the bracketed address from a "Name <addr>" value,
// or uses the whole value, and lower-cases it
func NormalizeAddress(raw string) string {
	value := strings.TrimSpace(raw)
	if open := strings.Index(value, "<"); open >= 0 {
		if end := strings.Index(value[open+1:], ">"); end >= 0 {
			value = value[open+1 : open+1+end]
		}
	}
	return strings.ToLower(strings.TrimSpace(value))
}

// DomainOf returns the lower-cased domain of an address, or "" if there is none
func DomainOf(address string) string {
	addr := NormalizeAddress(address)
	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return ""
	}
	return addr[at+1:]
}

// DetectUser infers which address in the corpus belongs to the user.
// Ties go to the address seen first.
func DetectUser(corpus Corpus) (Identity, bool) {
	counts := make(map[string]int)
	var order []string
	total := 0

	for i := range corpus {
		msg := &corpus[i]
		if msg.BodyStatus == BodyParseFailed {
			continue
		}
		addr := NormalizeAddress(msg.Sender)
		if addr == "" {
			continue
		}
		total++
		if _, seen := counts[addr]; !seen {
			order = append(order, addr)
		}
		counts[addr]++
	}

	if total == 0 {
		return Identity{}, false
	}

	best, bestCount := "", 0
	for _, addr := range order {
		if counts[addr] > bestCount {
			best, bestCount = addr, counts[addr]
		}
	}

	confidence := float64(bestCount) / float64(total)
	if confidence <= IdentityThreshold {
		return Identity{}, false
	}

	return Identity{
		Address:    best,
		Count:      bestCount,
		Total:      total,
		Confidence: confidence,
	}, true
}

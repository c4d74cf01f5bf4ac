package core

import (
	"fmt"
	"testing"
)

func corpusFrom(senders ...string) Corpus {
	c := make(Corpus, 0, len(senders))
	for i, s := range senders {
		c = append(c, NormalizedMessage{
			Filename:   fmt.Sprintf("%d.eml", i),
			Sender:     s,
			Body:       "body",
			BodyStatus: BodyExtracted,
		})
	}
	return c
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func TestDetectUser(t *testing.T) {
	tests := []struct {
		name     string
		senders  []string
		wantOK   bool
		wantAddr string
	}{
		{
			name:     "dominant sender",
			senders:  append(repeat("spock@x", 8), repeat("kirk@x", 2)...),
			wantOK:   true,
			wantAddr: "spock@x",
		},
		{
			name:    "uniform across four senders",
			senders: []string{"a@x", "b@x", "c@x", "d@x", "a@x", "b@x", "c@x", "d@x"},
			wantOK:  false,
		},
		{
			name:    "exactly the threshold is not enough",
			senders: append(repeat("a@x", 3), "b@x", "c@x", "d@x", "e@x", "f@x", "g@x", "h@x"),
			wantOK:  false,
		},
		{
			name:     "just over the threshold",
			senders:  append(repeat("a@x", 4), "b@x", "c@x", "d@x", "e@x", "f@x", "g@x"),
			wantOK:   true,
			wantAddr: "a@x",
		},
		{
			name:     "tie goes to first seen",
			senders:  []string{"kirk@x", "spock@x", "spock@x", "kirk@x"},
			wantOK:   true,
			wantAddr: "kirk@x",
		},
		{
			name:    "empty corpus",
			senders: nil,
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectUser(corpusFrom(tt.senders...))
			if ok != tt.wantOK {
				t.Fatalf("DetectUser() ok = %v, want %v (got %+v)", ok, tt.wantOK, got)
			}
			if ok && got.Address != tt.wantAddr {
				t.Errorf("DetectUser() = %q, want %q", got.Address, tt.wantAddr)
			}
		})
	}
}

func TestDetectUser_NormalizesDisplayNames(t *testing.T) {
	c := corpusFrom(
		"Commander Spock <Spock@Enterprise.Starfleet>",
		"spock@enterprise.starfleet",
		"SPOCK@ENTERPRISE.STARFLEET",
		"kirk@enterprise.starfleet",
	)

	got, ok := DetectUser(c)
	if !ok {
		t.Fatal("expected an identity")
	}
	if got.Address != "spock@enterprise.starfleet" {
		t.Errorf("Address = %q", got.Address)
	}
	if got.Count != 3 || got.Total != 4 || got.Confidence != 0.75 {
		t.Errorf("Identity = %+v", got)
	}
}

func TestDetectUser_IgnoresPlaceholdersAndEmptySenders(t *testing.T) {
	c := corpusFrom("spock@x", "", "")
	c = append(c,
		NormalizedMessage{Sender: "unknown", BodyStatus: BodyParseFailed},
		NormalizedMessage{Sender: "unknown", BodyStatus: BodyParseFailed},
		NormalizedMessage{Sender: "unknown", BodyStatus: BodyParseFailed},
	)

	got, ok := DetectUser(c)
	if !ok || got.Address != "spock@x" || got.Total != 1 {
		t.Errorf("DetectUser() = %+v, %v", got, ok)
	}
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Commander Spock <spock@enterprise.starfleet>", "spock@enterprise.starfleet"},
		{"  KIRK@Enterprise.Starfleet ", "kirk@enterprise.starfleet"},
		{"<only@brackets>", "only@brackets"},
		{"Broken <unterminated", "broken <unterminated"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeAddress(tt.in); got != tt.want {
			t.Errorf("NormalizeAddress(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDomainOf(t *testing.T) {
	if got := DomainOf("Spock <spock@Vulcan.Example>"); got != "vulcan.example" {
		t.Errorf("DomainOf() = %q", got)
	}
	if got := DomainOf("nobody"); got != "" {
		t.Errorf("DomainOf() = %q, want empty", got)
	}
}

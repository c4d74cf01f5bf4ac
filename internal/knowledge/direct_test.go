package knowledge

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/mikey/llm-style-responder/internal/core"
)

func directCorpus() core.Corpus {
	return core.Corpus{
		{Filename: "1.eml", Sender: "Spock <spock@x>", SentAt: "2024-01-03", Body: "one"},
		{Filename: "2.eml", Sender: "kirk@x", SentAt: "2024-01-05", Body: "two"},
		{Filename: "3.eml", Sender: "SPOCK@X", SentAt: "2024-01-09", Body: "three"},
		{Filename: "4.eml", Sender: "mccoy@x", SentAt: "2024-01-01", Body: "four"},
		{Filename: "5.eml", Sender: "spock@x", SentAt: "2024-01-07", Body: "five"},
	}
}

func filenames(examples []core.RetrievedExample) []string {
	out := make([]string, 0, len(examples))
	for _, ex := range examples {
		out = append(out, ex.Filename)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRetrieveDirect(t *testing.T) {
	tests := []struct {
		name   string
		sender string
		limit  int
		want   []string
	}{
		{"matching sender newest first", "spock@x", 10, []string{"3.eml", "5.eml", "1.eml"}},
		{"case-insensitive substring", "SPOCK", 2, []string{"3.eml", "5.eml"}},
		{"no match falls back to corpus", "sulu@x", 3, []string{"3.eml", "5.eml", "2.eml"}},
		{"empty sender uses corpus", "", 10, []string{"3.eml", "5.eml", "2.eml", "1.eml", "4.eml"}},
		{"zero limit", "spock@x", 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filenames(RetrieveDirect(tt.sender, directCorpus(), tt.limit))
			if !equalStrings(got, tt.want) {
				t.Errorf("RetrieveDirect(%q, %d) = %v, want %v", tt.sender, tt.limit, got, tt.want)
			}
		})
	}
}

func TestRetrieveDirect_RawStringOrder(t *testing.T) {
	c := core.Corpus{
		{Filename: "jan.eml", Sender: "a@x", SentAt: "Mon, 1 Jan 2024 10:00:00 +0000"},
		{Filename: "feb.eml", Sender: "a@x", SentAt: "Thu, 1 Feb 2024 10:00:00 +0000"},
	}

	got := filenames(RetrieveDirect("a@x", c, 10))
	if !equalStrings(got, []string{"feb.eml", "jan.eml"}) {
		t.Errorf("string order = %v", got)
	}

	c = core.Corpus{
		{Filename: "old.eml", Sender: "a@x", SentAt: "Wed, 3 Jan 2024 10:00:00 +0000"},
		{Filename: "new.eml", Sender: "a@x", SentAt: "Fri, 12 Jan 2024 10:00:00 +0000"},
		{Filename: "junk.eml", Sender: "a@x", SentAt: "not a date"},
	}
	// Byte order: "not..." > "Wed..." > "Fri...", whatever the dates say.
	got = filenames(RetrieveDirect("a@x", c, 10))
	if !equalStrings(got, []string{"junk.eml", "old.eml", "new.eml"}) {
		t.Errorf("string order = %v", got)
	}

	got = filenames(RetrieveDirectChronological("a@x", c, 10))
	if !equalStrings(got, []string{"new.eml", "old.eml", "junk.eml"}) {
		t.Errorf("chronological order = %v", got)
	}
}

func TestRetrieveDirect_CarriesFullBody(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'a'
	}
	c := core.Corpus{{Filename: "long.eml", Sender: "a@x", Body: string(long)}}

	got := RetrieveDirect("a@x", c, 1)
	if len(got) != 1 || len(got[0].Body) != 2000 || got[0].Rank != 1 {
		t.Errorf("RetrieveDirect() = %+v", got)
	}
}

func TestDirectStore(t *testing.T) {
	store := NewDirectStore(DirectOptions{Limit: 2}, zap.NewNop())
	ctx := context.Background()

	if store.Mode() != core.ModeDirect {
		t.Errorf("Mode() = %q", store.Mode())
	}
	if err := store.Index(ctx, directCorpus()); err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	got, err := store.Retrieve(ctx, "spock@x", "ignored", 0)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if !equalStrings(filenames(got), []string{"3.eml", "5.eml"}) {
		t.Errorf("Retrieve() = %v", filenames(got))
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	got, _ = store.Retrieve(ctx, "spock@x", "", 0)
	if len(got) != 0 {
		t.Errorf("Retrieve() after Reset = %v", filenames(got))
	}
}

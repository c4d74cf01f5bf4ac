// Package console renders command results for a terminal.
package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mikey/llm-style-responder/internal/core"
	"github.com/mikey/llm-style-responder/internal/corpus"
	"github.com/mikey/llm-style-responder/internal/utils"
)

// SourcePreviewChars is the length of the content preview shown per source
const SourcePreviewChars = 100

// Printer writes human-readable summaries
type Printer struct {
	out           io.Writer
	verbose       bool
	textProcessor *utils.TextProcessor
}

// NewPrinter creates a new Printer
func NewPrinter(out io.Writer, verbose bool, textProcessor *utils.TextProcessor) *Printer {
	return &Printer{
		out:           out,
		verbose:       verbose,
		textProcessor: textProcessor,
	}
}

func (p *Printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

// PrintIngestReport prints the outcome of a corpus build
func (p *Printer) PrintIngestReport(report *corpus.Report, mode string, elapsed time.Duration) {
	p.printf("\n=== Ingest Summary ===\n")
	p.printf("Messages: %d\n", len(report.Corpus))
	p.printf("Failures: %d\n", len(report.Failures))
	p.printf("Duplicates: %d\n", report.Duplicates)
	if report.Dropped > 0 {
		p.printf("Dropped: %d\n", report.Dropped)
	}
	p.printf("Knowledge mode: %s\n", mode)
	p.printf("Processing time: %v\n", elapsed)

	if len(report.Failures) > 0 {
		p.printf("\n=== Failures ===\n")
		for _, f := range report.Failures {
			p.printf("%d. %s: %s\n", f.Index+1, f.Filename, f.Reason)
		}
	}

	p.PrintStats(report.Stats)
}

// PrintStats prints corpus statistics
func (p *Printer) PrintStats(stats corpus.Stats) {
	p.printf("\n=== Corpus Statistics ===\n")
	p.printf("Total emails: %d\n", stats.Total)
	p.printf("Unique senders: %d\n", stats.UniqueSenders)
	p.printf("With body: %d\n", stats.WithBody)
	p.printf("Missing body: %d\n", stats.MissingBody)
	p.printf("Failed: %d\n", stats.Failed)
	p.printf("Duplicates: %d\n", stats.Duplicates)
	p.printf("Average body length: %d characters\n", stats.AverageBodyLength)
	if !stats.Earliest.IsZero() {
		p.printf("Date range: %s to %s\n",
			stats.Earliest.Format("2006-01-02"), stats.Latest.Format("2006-01-02"))
	}
}

// PrintIdentity prints the detected corpus owner
func (p *Printer) PrintIdentity(id core.Identity, ok bool) {
	p.printf("\n=== Identity ===\n")
	if !ok {
		p.printf("No dominant sender found\n")
		return
	}
	p.printf("Address: %s\n", id.Address)
	p.printf("Messages: %d of %d (%.0f%%)\n", id.Count, id.Total, id.Confidence*100)
}

// PrintResult prints a generated response and its sources
func (p *Printer) PrintResult(result *core.GenerationResult, elapsed time.Duration) {
	p.printf("\n=== Results ===\n")
	if !result.Success {
		p.printf("Error: %s\n", result.Error)
		return
	}
	p.printf("Mode: %s\n", result.Mode)
	p.printf("Confidence: %s\n", result.Confidence)
	p.printf("Processing time: %v\n", elapsed)
	p.printf("\n%s\n", result.Response)

	if len(result.Sources) == 0 {
		return
	}
	p.printf("\n=== Sources ===\n")
	for i, src := range result.Sources {
		p.printf("%d. %s (from %s)\n", i+1, orDash(src.Subject), orDash(src.Sender))
		if src.Score != 0 {
			p.printf("   Score: %.4f\n", src.Score)
		}
		p.printf("   %s\n", p.preview(src.Body))
	}
}

// PrintSearch prints search hits
func (p *Printer) PrintSearch(term string, hits core.Corpus) {
	p.printf("\n=== Search: %q ===\n", term)
	p.printf("Matches: %d\n", len(hits))
	for i := range hits {
		msg := &hits[i]
		p.printf("%d. %s | %s | %s\n", i+1, msg.Filename, orDash(msg.Sender), orDash(msg.Subject))
		if p.verbose {
			p.printf("   %s\n", p.preview(msg.Body))
		}
	}
}

// preview flattens whitespace and shortens text for a one-line listing
func (p *Printer) preview(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	short := p.textProcessor.Preview(flat, SourcePreviewChars)
	if short != flat {
		short += "..."
	}
	return short
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

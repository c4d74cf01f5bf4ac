package mailparse

import (
	"bufio"
	"bytes"
	"fmt"
	netmail "net/mail"
	"strings"

	"github.com/emersion/go-message/mail"
	"github.com/jhillyerd/enmime"
)

// headerSet is the fixed header shape every parser is reduced to
type headerSet struct {
	From      string
	To        []string
	Cc        []string
	Subject   string
	Date      string
	MessageID string
}

func (h headerSet) empty() bool {
	return h.From == "" && h.Subject == "" && h.Date == "" && h.MessageID == "" &&
		len(h.To) == 0 && len(h.Cc) == 0
}

func headersFromEnvelope(env *enmime.Envelope) headerSet {
	return headerSet{
		From:      strings.TrimSpace(env.GetHeader("From")),
		To:        envelopeAddresses(env, "To"),
		Cc:        envelopeAddresses(env, "Cc"),
		Subject:   strings.TrimSpace(env.GetHeader("Subject")),
		Date:      strings.TrimSpace(env.GetHeader("Date")),
		MessageID: strings.TrimSpace(env.GetHeader("Message-Id")),
	}
}

func envelopeAddresses(env *enmime.Envelope, key string) []string {
	value := env.GetHeader(key)
	if strings.TrimSpace(value) == "" {
		return nil
	}
	list, err := env.AddressList(key)
	if err != nil || len(list) == 0 {
		return splitAddresses(value)
	}
	return formatAddresses(list)
}

func headersFromMessage(h mail.Header) headerSet {
	text := func(key string) string {
		if v, err := h.Text(key); err == nil {
			return strings.TrimSpace(v)
		}
		return strings.TrimSpace(h.Get(key))
	}

	addresses := func(key string) []string {
		value := h.Get(key)
		if strings.TrimSpace(value) == "" {
			return nil
		}
		list, err := h.AddressList(key)
		if err != nil || len(list) == 0 {
			return splitAddresses(text(key))
		}
		converted := make([]*netmail.Address, 0, len(list))
		for _, a := range list {
			converted = append(converted, &netmail.Address{Name: a.Name, Address: a.Address})
		}
		return formatAddresses(converted)
	}

	return headerSet{
		From:      text("From"),
		To:        addresses("To"),
		Cc:        addresses("Cc"),
		Subject:   text("Subject"),
		Date:      text("Date"),
		MessageID: strings.TrimSpace(h.Get("Message-Id")),
	}
}

// scanHeaders reads "Key: value" lines up to the first blank line, joining
// folded continuation lines. Lines without a colon are ignored.
func scanHeaders(raw []byte) headerSet {
	fields := make(map[string]string)
	var last string

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			break
		}
		if (line[0] == ' ' || line[0] == '\t') && last != "" {
			fields[last] += " " + strings.TrimSpace(line)
			continue
		}
		colon := strings.Index(line, ":")
		if colon <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:colon]))
		last = key
		if _, seen := fields[key]; !seen {
			fields[key] = strings.TrimSpace(line[colon+1:])
		}
	}

	return headerSet{
		From:      fields["from"],
		To:        splitAddresses(fields["to"]),
		Cc:        splitAddresses(fields["cc"]),
		Subject:   fields["subject"],
		Date:      fields["date"],
		MessageID: fields["message-id"],
	}
}

func formatAddresses(list []*netmail.Address) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		if a == nil {
			continue
		}
		addr := strings.TrimSpace(a.Address)
		name := strings.TrimSpace(a.Name)
		switch {
		case addr == "" && name == "":
			continue
		case name == "":
			out = append(out, addr)
		case addr == "":
			out = append(out, name)
		default:
			out = append(out, fmt.Sprintf("%s <%s>", name, addr))
		}
	}
	return out
}

// splitAddresses is the fallback for address headers that do not parse
func splitAddresses(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

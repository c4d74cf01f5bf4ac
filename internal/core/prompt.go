package core

import (
	"fmt"
	"strings"
)

var styleInstructions = map[ResponseStyle]string{
	StyleProfessional: "Maintain a professional, courteous tone",
	StyleFriendly:     "Use a warm, friendly tone while remaining professional",
	StyleBrief:        "Keep the response concise and to the point",
	StyleDetailed:     "Provide a comprehensive, detailed response",
}

var baselineStyleInstructions = map[ResponseStyle]string{
	StyleProfessional: "Write in a professional, courteous tone",
	StyleFriendly:     "Write in a warm, friendly tone while remaining professional",
	StyleBrief:        "Keep the response concise and to the point",
	StyleDetailed:     "Provide a comprehensive, detailed response",
}

var messageTypeHints = map[MessageType]string{
	MessageGeneral:           "This is a general business email",
	MessageExternalClient:    "This is from an external client - maintain extra professionalism",
	MessageInternalColleague: "This is from an internal colleague - can be more casual if appropriate",
	MessageDiscussion:        "This is part of an ongoing discussion - reference context appropriately",
	MessageRequest:           "This email contains a request - ensure you address it clearly",
	MessageUpdate:            "This is an update/status email - acknowledge and respond appropriately",
}

const fallbackMessageHint = "general business email"

const noHistoryText = "No previous email history found with this sender."

const stylePromptFormat = `You have been provided with %d email examples. Study them all and copy the style exactly.

=== CONTEXT ===
%s

=== EMAIL EXAMPLES ===
%s

=== EMAIL REQUIRING RESPONSE ===
From: %s
Content: %s

=== STYLE MIMICKING INSTRUCTIONS ===
The examples above come from the same author with a distinctive style.

Analyze the pattern:
- How do they open emails? Copy the salutation.
- What vocabulary and recurring phrases do they use? Use them.
- Do they use technical terms, numbers or percentages? You must too.
- What is their sentence length and rhythm? Match it.
- How formal or informal are they? Be identical.
- How do they sign off? Copy the sign-off exactly.

%s

Message type: %s

Your response must:
1. Sound like it was written by the same person who wrote the examples
2. Use their exact vocabulary and phrasing patterns
3. Match their salutation and sign-off conventions
4. Match their formality level and emotional tone
5. Be obviously in their style, not generic

If the author's style is unusual or highly distinctive, embrace it fully. Do not normalize or dilute it.

Style modifier: %s

Generate a response that is indistinguishable from the author's writing.`

const baselinePromptFormat = `Generate a standard email response to the following:

From: %s
Content: %s

Message type: %s

Instructions:
- %s
- Do not try to mimic any particular style
- Write in standard business English
- Be helpful and responsive to the request

Generate only the email response content, without subject line.`

const internalRules = "Internal email rules: match the casualness and informality level of similar internal emails in the examples. You can be more direct and less formal."

const externalRules = "External email rules: maintain appropriate professional boundaries while still copying the style patterns."

func styleInstruction(table map[ResponseStyle]string, style ResponseStyle) string {
	if s, ok := table[style]; ok {
		return s
	}
	return table[StyleProfessional]
}

// MessageTypeHint returns the hint for a message type, falling back to a
// generic business email hint for unknown values
func MessageTypeHint(t MessageType) string {
	if hint, ok := messageTypeHints[t]; ok {
		return hint
	}
	return fallbackMessageHint
}

// relationshipContext summarizes who is answering whom
func relationshipContext(req GenerationRequest) string {
	var parts []string
	if req.UserIdentity != "" {
		parts = append(parts, "You are responding as: "+req.UserIdentity)
	}

	if req.IsInternal {
		senderDomain := DomainOf(req.SenderAddress)
		userDomain := DomainOf(req.UserIdentity)
		if senderDomain != "" && senderDomain == userDomain {
			parts = append(parts, "This is an INTERNAL email (same organization)")
		} else {
			parts = append(parts, "Note: Marked as internal but domains differ")
		}
	} else {
		parts = append(parts, "This is an EXTERNAL email")
	}

	parts = append(parts, "Message type: "+MessageTypeHint(req.MessageType))
	return strings.Join(parts, " | ")
}

// FormatExamples serializes retrieved examples with their full content
func FormatExamples(examples []RetrievedExample) string {
	if len(examples) == 0 {
		return noHistoryText
	}

	var b strings.Builder
	for i, ex := range examples {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Email %d:\n", i+1)
		fmt.Fprintf(&b, "- From: %s\n", orDefault(ex.Sender, "Unknown"))
		fmt.Fprintf(&b, "- Subject: %s\n", orDefault(ex.Subject, "No subject"))
		fmt.Fprintf(&b, "- Date: %s\n", orDefault(ex.Date, "Unknown date"))
		fmt.Fprintf(&b, "- Content: %s\n", orDefault(ex.Body, "No content"))
		b.WriteString("---")
	}
	return b.String()
}

// AssemblePrompt builds the style-mimicking generation prompt
func AssemblePrompt(req GenerationRequest) string {
	rules := externalRules
	if req.IsInternal {
		rules = internalRules
	}

	return fmt.Sprintf(stylePromptFormat,
		len(req.Examples),
		relationshipContext(req),
		FormatExamples(req.Examples),
		req.SenderAddress,
		req.IncomingText,
		rules,
		MessageTypeHint(req.MessageType),
		styleInstruction(styleInstructions, req.Style),
	)
}

// FitPrompt assembles the prompt for req, dropping the lowest-ranked examples
// until it is at most limit bytes. A limit of zero or less means no limit.
// The returned request carries the examples that were kept.
func FitPrompt(req GenerationRequest, limit int) (string, GenerationRequest, error) {
	prompt := AssemblePrompt(req)
	for limit > 0 && len(prompt) > limit {
		if len(req.Examples) == 0 {
			return "", req, fmt.Errorf("%w: %d bytes without examples, limit is %d",
				ErrPromptTooLong, len(prompt), limit)
		}
		req.Examples = req.Examples[:len(req.Examples)-1]
		prompt = AssemblePrompt(req)
	}
	return prompt, req, nil
}

// AssembleBaselinePrompt builds a control prompt. It never includes retrieved
// examples or the user identity.
func AssembleBaselinePrompt(req GenerationRequest) string {
	return fmt.Sprintf(baselinePromptFormat,
		req.SenderAddress,
		req.IncomingText,
		MessageTypeHint(req.MessageType),
		styleInstruction(baselineStyleInstructions, req.Style),
	)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

package llm

import (
	"fmt"
	"strings"
)

// DefaultMaxChars bounds the page text sent with one request.
const DefaultMaxChars = 24000

// BuildSystemPrompt composes the system message: the German LV conventions
// the model has to follow and strict formatting rules.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a parser for German bills of quantities (Leistungsverzeichnis, LV). Return ONLY JSON that matches the provided JSON Schema.",
		"Every position starts with an ordinal number (OZ) such as 01.02.0010, 01.02.03..0010 or 3. followed by a short text (Kurztext).",
		"Copy 'position_number' exactly as printed, including dots. Never invent numbers that are not in the text.",
		"'title' is the short text of the position, without the ordinal number, quantity or prices.",
		"Numbers in the text use German separators: 1.234,50 means 1234.5. Output JSON numbers with a dot as decimal separator.",
		"'quantity' is the Menge, 'unit_price' the Einheitspreis (EP), 'total_price' the Gesamtpreis (GP). Omit prices that are blank or dotted placeholders.",
		"Map units to one of: m, m², m³, Stk, kg, t, l, h, psch (lfm -> m, qm -> m², Stück -> Stk, pauschal -> psch, Std -> h).",
		"'page' is the number from the nearest preceding 'Seite N' marker.",
		"Skip headings of titles and lots (Titel, Los) that carry no quantity and no short text of their own.",
		"Never output null. If a field is not present, omit it.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the filename hint and the page text, each page
// introduced by a "Seite N" marker. Text beyond MaxChars is cut.
func BuildUserPrompt(req ExtractRequest) string {
	limit := req.MaxChars
	if limit <= 0 {
		limit = DefaultMaxChars
	}

	var b strings.Builder
	if name := strings.TrimSpace(req.FilenameHint); name != "" {
		b.WriteString("Filename: ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	b.WriteString("\nLV text:\n")

	var body strings.Builder
	for i, lines := range req.Pages {
		fmt.Fprintf(&body, "--- Seite %d ---\n", i+1)
		for _, l := range lines {
			body.WriteString(l)
			body.WriteString("\n")
		}
	}
	text := body.String()
	if r := []rune(text); len(r) > limit {
		b.WriteString(string(r[:limit]))
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	b.WriteString("\n\nReturn ONLY JSON that matches the provided schema.")
	return b.String()
}

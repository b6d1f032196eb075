package helpers

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func EscapeMarkdownV2(text string) string {
	charactersToEscape := []string{".", "-", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "=", "|", "{", "}", "!"}

	for _, char := range charactersToEscape {
		text = strings.ReplaceAll(text, char, "\\"+char)
	}
	return text
}

// FormatPercent formats a percentage value with one decimal, e.g. "12.3%".
func FormatPercent(value float64, escapeMarkdown bool) string {
	p := message.NewPrinter(language.English)
	formatted := p.Sprintf("%.1f%%", value)

	if escapeMarkdown {
		return EscapeMarkdownV2(formatted)
	}
	return formatted
}

// FormatCount formats an integer with thousand separators, escaped for MarkdownV2.
func FormatCount(n int) string {
	p := message.NewPrinter(language.English)
	return EscapeMarkdownV2(p.Sprintf("%d", n))
}

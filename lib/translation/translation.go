package translation

import (
	"github.com/leonelquinteros/gotext"

	"overwatch-telegram-bot/lib/helpers"
)

func GetLanguage() string {
	lang := gotext.GetLanguage()

	if lang == "und" || lang == "" {
		return "zh"
	}

	return lang
}

func Translate(msgID string, vars ...interface{}) string {
	return gotext.Get(msgID, vars...)
}

// TranslatePlain translates a message holding no markup and escapes it for
// MarkdownV2.
func TranslatePlain(msgID string, vars ...interface{}) string {
	return helpers.EscapeMarkdownV2(gotext.Get(msgID, vars...))
}

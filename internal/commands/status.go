package commands

import (
	"github.com/dustin/go-humanize"

	"overwatch-telegram-bot/lib/helpers"
	"overwatch-telegram-bot/lib/translation"
)

// Status describes the loaded data as a text-only result.
func (s *Service) Status() (Result, error) {
	snap, err := s.Roster.Snapshot()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Caption: translation.Translate(
			"Latest season: *%s* \\(%s ~ %s\\)\nHeroes: *%s*\nData loaded %s",
			helpers.EscapeMarkdownV2(snap.Latest.Name),
			helpers.EscapeMarkdownV2(snap.Latest.StartDate),
			helpers.EscapeMarkdownV2(snap.Latest.EndDate),
			helpers.FormatCount(len(snap.Heroes)),
			helpers.EscapeMarkdownV2(humanize.Time(snap.LoadedAt)),
		),
	}, nil
}

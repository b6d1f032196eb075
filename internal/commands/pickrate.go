package commands

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"overwatch-telegram-bot/internal/chart"
	"overwatch-telegram-bot/internal/metrics"
	"overwatch-telegram-bot/internal/normalize"
	"overwatch-telegram-bot/internal/types"
	"overwatch-telegram-bot/lib/helpers"
	"overwatch-telegram-bot/lib/translation"
)

// PickRate renders the latest season's pick and ban rates, optionally
// filtered by rank.
func (s *Service) PickRate(ctx context.Context, rankArg string) (Result, error) {
	timer := prometheus.NewTimer(metrics.CommandDuration.WithLabelValues("pickrate"))
	defer timer.ObserveDuration()

	log.Debugf("processing command pickrate with argument :%s", rankArg)

	snap, err := s.Roster.Snapshot()
	if err != nil {
		return Result{}, err
	}

	rank, err := s.resolveRank(rankArg)
	if err != nil {
		return Result{}, err
	}

	entries, err := s.Leaderboards.Get(ctx, snap.Latest.ID, rank)
	if err != nil {
		return Result{}, errors.Wrap(err, "command pickrate")
	}

	var (
		rows []chart.PickRateRow
		top  chart.PickRateRow
		date string
	)
	for _, entry := range entries {
		hero, ok := snap.Heroes[entry.HeroID]
		if !ok {
			log.Warnf("leaderboard %s references unknown hero %s", snap.Latest.ID, entry.HeroID)
			continue
		}
		row := chart.PickRateRow{
			Name:     hero.Name,
			Role:     hero.Role,
			PickRate: entry.SelectionRatio,
			BanRate:  entry.BanRatio,
		}
		if row.PickRate >= top.PickRate {
			top = row
		}
		rows = append(rows, row)
		date = entry.Date
	}

	img, err := s.Renderer.PickRate(rows, snap.Latest.Name, rank.Label())
	if err != nil {
		return Result{}, errors.Wrap(err, "command pickrate")
	}

	return Result{
		Image: img,
		Caption: translation.Translate(
			"*%s* %s hero pick and ban rates\nMost picked: *%s* %s\nData as of %s",
			helpers.EscapeMarkdownV2(snap.Latest.Name),
			helpers.EscapeMarkdownV2(rank.Label()),
			helpers.EscapeMarkdownV2(top.Name),
			helpers.FormatPercent(top.PickRate, true),
			helpers.EscapeMarkdownV2(date),
		),
	}, nil
}

// resolveRank maps user input to a rank filter. Empty means all ranks.
func (s *Service) resolveRank(input string) (types.Rank, error) {
	if normalize.IsAllRanks(input) {
		return "", nil
	}
	if rank, ok := normalize.Rank(input); ok {
		return rank, nil
	}
	if s.StrictRank {
		return "", &NotFoundError{Kind: KindRank, Input: input, Valid: rankLabels()}
	}

	log.Debugf("unknown rank %q, falling back to all ranks", input)
	return "", nil
}

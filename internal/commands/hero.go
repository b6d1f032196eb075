package commands

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"overwatch-telegram-bot/internal/chart"
	"overwatch-telegram-bot/internal/metrics"
	"overwatch-telegram-bot/internal/normalize"
	"overwatch-telegram-bot/internal/types"
	"overwatch-telegram-bot/lib/helpers"
	"overwatch-telegram-bot/lib/translation"
)

type rankResult struct {
	rank  int
	row   chart.RankRow
	date  string
	found bool
}

// HeroStatistics renders one hero's pick, ban and win rates across every
// rank of the latest season.
func (s *Service) HeroStatistics(ctx context.Context, heroArg string) (Result, error) {
	timer := prometheus.NewTimer(metrics.CommandDuration.WithLabelValues("hero"))
	defer timer.ObserveDuration()

	log.Debugf("processing command hero with argument :%s", heroArg)

	snap, err := s.Roster.Snapshot()
	if err != nil {
		return Result{}, err
	}

	heroID, ok := normalize.HeroID(heroArg, snap.Heroes)
	if !ok {
		return Result{}, &NotFoundError{Kind: KindHero, Input: heroArg}
	}
	hero := snap.Heroes[heroID]
	season := snap.Latest.ID

	p := pool.NewWithResults[rankResult]().WithContext(ctx).WithCancelOnError()
	for i, rank := range types.Ranks {
		i, rank := i, rank
		p.Go(func(ctx context.Context) (rankResult, error) {
			entries, err := s.Leaderboards.Get(ctx, season, rank)
			if err != nil {
				return rankResult{}, errors.Wrapf(err, "rank %s", rank)
			}
			for _, entry := range entries {
				if entry.HeroID != heroID {
					continue
				}
				return rankResult{
					rank: i,
					row: chart.RankRow{
						Rank:     rank,
						PickRate: entry.SelectionRatio,
						BanRate:  entry.BanRatio,
						WinRate:  entry.WinRatio,
					},
					date:  entry.Date,
					found: true,
				}, nil
			}
			return rankResult{rank: i}, nil
		})
	}
	results, err := p.Wait()
	if err != nil {
		return Result{}, errors.Wrap(err, "command hero")
	}

	sort.Slice(results, func(i, j int) bool { return results[i].rank < results[j].rank })

	var (
		rows []chart.RankRow
		date string
	)
	for _, res := range results {
		if !res.found {
			continue
		}
		rows = append(rows, res.row)
		date = res.date
	}
	if len(rows) == 0 {
		return Result{}, errors.Wrapf(chart.ErrNoData, "hero %s", heroID)
	}

	img, err := s.Renderer.HeroStatistics(s.background(ctx, hero), rows, date)
	if err != nil {
		return Result{}, errors.Wrap(err, "command hero")
	}

	return Result{
		Image: img,
		Caption: translation.Translate(
			"*%s* statistics by rank, %s",
			helpers.EscapeMarkdownV2(hero.Name),
			helpers.EscapeMarkdownV2(snap.Latest.Name),
		),
	}, nil
}

// background fetches the hero picture. Failures only cost the artwork.
func (s *Service) background(ctx context.Context, hero types.Hero) []byte {
	if s.Pictures == nil || hero.Pictures.P960x666 == "" {
		return nil
	}
	raw, err := s.Pictures.FetchPicture(ctx, hero.Pictures.P960x666)
	if err != nil {
		log.Warnf("could not fetch picture of %s: %v", hero.ID, err)
		return nil
	}
	return raw
}

package commands

import (
	"context"
	"fmt"
	"strings"

	"overwatch-telegram-bot/internal/chart"
	"overwatch-telegram-bot/internal/roster"
	"overwatch-telegram-bot/internal/types"
)

// Roster exposes the loaded hero and season data.
type Roster interface {
	Snapshot() (*roster.Snapshot, error)
}

// Leaderboards returns cached leaderboard snapshots.
type Leaderboards interface {
	Get(ctx context.Context, season string, rank types.Rank) ([]types.LeaderboardEntry, error)
}

// Renderer draws the chart images.
type Renderer interface {
	PickRate(rows []chart.PickRateRow, seasonName, rankLabel string) ([]byte, error)
	HeroStatistics(background []byte, rows []chart.RankRow, date string) ([]byte, error)
}

// Pictures downloads hero artwork.
type Pictures interface {
	FetchPicture(ctx context.Context, url string) ([]byte, error)
}

// Service implements the bot commands on top of the roster and the
// leaderboard cache.
type Service struct {
	Roster       Roster
	Leaderboards Leaderboards
	Renderer     Renderer
	Pictures     Pictures

	// StrictRank rejects unrecognised rank input instead of falling back
	// to all ranks.
	StrictRank bool
}

// Result is a command reply. Image is nil for text-only replies; Caption is
// MarkdownV2.
type Result struct {
	Image   []byte
	Caption string
}

type NotFoundKind string

const (
	KindRank NotFoundKind = "rank"
	KindHero NotFoundKind = "hero"
)

// NotFoundError reports user input that matched no rank or hero.
type NotFoundError struct {
	Kind  NotFoundKind
	Input string
	Valid []string
}

func (e *NotFoundError) Error() string {
	if len(e.Valid) == 0 {
		return fmt.Sprintf("%s %q not found", e.Kind, e.Input)
	}
	return fmt.Sprintf("%s %q not found, valid: %s", e.Kind, e.Input, strings.Join(e.Valid, ", "))
}

func rankLabels() []string {
	labels := make([]string, 0, len(types.Ranks)+1)
	for _, rank := range types.Ranks {
		labels = append(labels, rank.Label())
	}
	return append(labels, types.AllRanksLabel)
}

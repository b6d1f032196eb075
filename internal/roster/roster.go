package roster

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"overwatch-telegram-bot/internal/types"
)

// ErrNotReady is returned by Snapshot until the first successful Load.
var ErrNotReady = errors.New("hero and season data not loaded yet")

// Loader fetches the hero roster and season list.
type Loader interface {
	FetchBaseData(ctx context.Context) (types.BaseData, error)
}

// Snapshot is an immutable view of the loaded data.
type Snapshot struct {
	Heroes   map[string]types.Hero
	Seasons  map[string]types.Season
	Ordered  []types.Season
	Latest   types.Season
	LoadedAt time.Time
}

// Roster holds the hero and season data for the lifetime of the process.
type Roster struct {
	mu       sync.RWMutex
	snapshot *Snapshot
}

func New() *Roster {
	return &Roster{}
}

// Load fetches base data and swaps it in as a whole. A failed load leaves
// the previous state untouched.
func (r *Roster) Load(ctx context.Context, loader Loader) error {
	data, err := loader.FetchBaseData(ctx)
	if err != nil {
		return errors.Wrap(err, "could not fetch base data")
	}
	if len(data.Seasons) == 0 {
		return errors.New("armory returned no seasons")
	}

	s := &Snapshot{
		Heroes:   make(map[string]types.Hero, len(data.Heroes)),
		Seasons:  make(map[string]types.Season, len(data.Seasons)),
		Ordered:  data.Seasons,
		Latest:   data.Seasons[0],
		LoadedAt: time.Now(),
	}
	for _, hero := range data.Heroes {
		s.Heroes[hero.ID] = hero
	}
	for _, season := range data.Seasons {
		s.Seasons[season.ID] = season
	}

	r.mu.Lock()
	r.snapshot = s
	r.mu.Unlock()

	log.Infof("Base data loaded, latest season: %s, heroes: %d", s.Latest.Name, len(s.Heroes))
	return nil
}

func (r *Roster) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot != nil
}

// Snapshot returns the loaded data or ErrNotReady. Callers must not modify it.
func (r *Roster) Snapshot() (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.snapshot == nil {
		return nil, ErrNotReady
	}
	return r.snapshot, nil
}

package commands

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overwatch-telegram-bot/internal/chart"
	"overwatch-telegram-bot/internal/roster"
	"overwatch-telegram-bot/internal/types"
)

type fakeRoster struct {
	snap *roster.Snapshot
}

func (f *fakeRoster) Snapshot() (*roster.Snapshot, error) {
	if f.snap == nil {
		return nil, roster.ErrNotReady
	}
	return f.snap, nil
}

type leaderboardCall struct {
	season string
	rank   types.Rank
}

type fakeLeaderboards struct {
	mu      sync.Mutex
	calls   []leaderboardCall
	entries map[types.Rank][]types.LeaderboardEntry
	errs    map[types.Rank]error
}

func (f *fakeLeaderboards) Get(_ context.Context, season string, rank types.Rank) ([]types.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, leaderboardCall{season: season, rank: rank})
	if err := f.errs[rank]; err != nil {
		return nil, err
	}
	return f.entries[rank], nil
}

type fakeRenderer struct {
	pickRows   []chart.PickRateRow
	season     string
	rankLabel  string
	rankRows   []chart.RankRow
	background []byte
	date       string
}

func (f *fakeRenderer) PickRate(rows []chart.PickRateRow, seasonName, rankLabel string) ([]byte, error) {
	if len(rows) == 0 {
		return nil, chart.ErrNoData
	}
	f.pickRows, f.season, f.rankLabel = rows, seasonName, rankLabel
	return []byte("pickrate"), nil
}

func (f *fakeRenderer) HeroStatistics(background []byte, rows []chart.RankRow, date string) ([]byte, error) {
	f.background, f.rankRows, f.date = background, rows, date
	return []byte("hero"), nil
}

type fakePictures struct {
	urls []string
	err  error
}

func (f *fakePictures) FetchPicture(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("picture"), nil
}

func testSnapshot() *roster.Snapshot {
	season := types.Season{ID: "24", Name: "S24", StartDate: "2024-01-01", EndDate: "2024-03-01"}
	return &roster.Snapshot{
		Heroes: map[string]types.Hero{
			"ana": {ID: "ana", Name: "安娜", Role: types.RoleSupport,
				Pictures: types.HeroPictures{P960x666: "https://example.com/ana.jpg"}},
			"cassidy":   {ID: "cassidy", Name: "卡西迪", Role: types.RoleDamage},
			"reinhardt": {ID: "reinhardt", Name: "莱因哈特", Role: types.RoleTank},
		},
		Seasons:  map[string]types.Season{"24": season},
		Ordered:  []types.Season{season},
		Latest:   season,
		LoadedAt: time.Now().Add(-time.Hour),
	}
}

func newTestService() (*Service, *fakeLeaderboards, *fakeRenderer, *fakePictures) {
	lb := &fakeLeaderboards{
		entries: map[types.Rank][]types.LeaderboardEntry{},
		errs:    map[types.Rank]error{},
	}
	r := &fakeRenderer{}
	p := &fakePictures{}
	return &Service{
		Roster:       &fakeRoster{snap: testSnapshot()},
		Leaderboards: lb,
		Renderer:     r,
		Pictures:     p,
	}, lb, r, p
}

func TestPickRate_NotReady(t *testing.T) {
	s, lb, _, _ := newTestService()
	s.Roster = &fakeRoster{}

	_, err := s.PickRate(context.Background(), "")
	assert.True(t, errors.Is(err, roster.ErrNotReady))
	assert.Empty(t, lb.calls)
}

func TestPickRate_AllRanks(t *testing.T) {
	s, lb, r, _ := newTestService()
	lb.entries[""] = []types.LeaderboardEntry{
		{HeroID: "ana", SelectionRatio: 20.1, BanRatio: 5, Date: "2024-02-01"},
		{HeroID: "retired", SelectionRatio: 99},
		{HeroID: "reinhardt", SelectionRatio: 11.2, BanRatio: 1, Date: "2024-02-01"},
	}

	res, err := s.PickRate(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, []leaderboardCall{{season: "24", rank: ""}}, lb.calls)
	assert.Equal(t, []byte("pickrate"), res.Image)
	assert.Equal(t, "S24", r.season)
	assert.Equal(t, types.AllRanksLabel, r.rankLabel)
	assert.Equal(t, []chart.PickRateRow{
		{Name: "安娜", Role: types.RoleSupport, PickRate: 20.1, BanRate: 5},
		{Name: "莱因哈特", Role: types.RoleTank, PickRate: 11.2, BanRate: 1},
	}, r.pickRows)
	assert.Contains(t, res.Caption, "*安娜*")
	assert.Contains(t, res.Caption, `2024\-02\-01`)
}

func TestPickRate_RankByLabel(t *testing.T) {
	s, lb, r, _ := newTestService()
	lb.entries[types.RankGold] = []types.LeaderboardEntry{{HeroID: "ana", SelectionRatio: 3}}

	_, err := s.PickRate(context.Background(), "黄金")
	require.NoError(t, err)

	assert.Equal(t, []leaderboardCall{{season: "24", rank: types.RankGold}}, lb.calls)
	assert.Equal(t, "黄金", r.rankLabel)
}

func TestPickRate_UnknownRank(t *testing.T) {
	s, lb, _, _ := newTestService()
	lb.entries[""] = []types.LeaderboardEntry{{HeroID: "ana", SelectionRatio: 3}}

	_, err := s.PickRate(context.Background(), "gld")
	require.NoError(t, err)
	assert.Equal(t, types.Rank(""), lb.calls[0].rank)

	s.StrictRank = true
	_, err = s.PickRate(context.Background(), "gld")

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, KindRank, notFound.Kind)
	assert.Equal(t, "gld", notFound.Input)
	assert.Contains(t, notFound.Valid, "黄金")
	assert.Contains(t, notFound.Valid, types.AllRanksLabel)
	assert.Len(t, lb.calls, 1)
}

func TestPickRate_UpstreamFailure(t *testing.T) {
	s, lb, _, _ := newTestService()
	upstream := errors.New("armory down")
	lb.errs[""] = upstream

	_, err := s.PickRate(context.Background(), "")
	assert.True(t, errors.Is(err, upstream))
}

func TestPickRate_NoKnownHeroes(t *testing.T) {
	s, lb, _, _ := newTestService()
	lb.entries[""] = []types.LeaderboardEntry{{HeroID: "retired"}}

	_, err := s.PickRate(context.Background(), "")
	assert.True(t, errors.Is(err, chart.ErrNoData))
}

func TestHeroStatistics(t *testing.T) {
	s, lb, r, p := newTestService()
	lb.entries[types.RankGold] = []types.LeaderboardEntry{
		{HeroID: "reinhardt", SelectionRatio: 9},
		{HeroID: "ana", SelectionRatio: 8, BanRatio: 2, WinRatio: 51, Date: "2024-02-01"},
	}
	lb.entries[types.RankChampion] = []types.LeaderboardEntry{
		{HeroID: "ana", SelectionRatio: 4, BanRatio: 10, WinRatio: 48, Date: "2024-02-02"},
	}
	lb.entries[types.RankBronze] = []types.LeaderboardEntry{{HeroID: "reinhardt"}}

	res, err := s.HeroStatistics(context.Background(), " ANA ")
	require.NoError(t, err)

	assert.Equal(t, []byte("hero"), res.Image)
	assert.Len(t, lb.calls, len(types.Ranks))
	for _, call := range lb.calls {
		assert.Equal(t, "24", call.season)
	}
	assert.Equal(t, []chart.RankRow{
		{Rank: types.RankGold, PickRate: 8, BanRate: 2, WinRate: 51},
		{Rank: types.RankChampion, PickRate: 4, BanRate: 10, WinRate: 48},
	}, r.rankRows)
	assert.Equal(t, "2024-02-02", r.date)
	assert.Equal(t, []byte("picture"), r.background)
	assert.Equal(t, []string{"https://example.com/ana.jpg"}, p.urls)
	assert.Contains(t, res.Caption, "*安娜*")
}

func TestHeroStatistics_Alias(t *testing.T) {
	s, lb, r, _ := newTestService()
	lb.entries[types.RankSilver] = []types.LeaderboardEntry{{HeroID: "cassidy", SelectionRatio: 6, WinRatio: 50}}

	_, err := s.HeroStatistics(context.Background(), "麦克雷")
	require.NoError(t, err)
	require.Len(t, r.rankRows, 1)
	assert.Equal(t, types.RankSilver, r.rankRows[0].Rank)
	assert.Nil(t, r.background)
}

func TestHeroStatistics_UnknownHero(t *testing.T) {
	s, lb, _, _ := newTestService()

	_, err := s.HeroStatistics(context.Background(), "genji")

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, KindHero, notFound.Kind)
	assert.Equal(t, "genji", notFound.Input)
	assert.Empty(t, lb.calls)
}

func TestHeroStatistics_PictureFailure(t *testing.T) {
	s, lb, r, p := newTestService()
	p.err = errors.New("cdn down")
	lb.entries[types.RankGold] = []types.LeaderboardEntry{{HeroID: "ana", SelectionRatio: 8}}

	_, err := s.HeroStatistics(context.Background(), "ana")
	require.NoError(t, err)
	assert.Nil(t, r.background)
}

func TestHeroStatistics_RankFailure(t *testing.T) {
	s, lb, _, _ := newTestService()
	upstream := errors.New("armory down")
	lb.errs[types.RankDiamond] = upstream

	_, err := s.HeroStatistics(context.Background(), "ana")
	assert.True(t, errors.Is(err, upstream))
}

func TestHeroStatistics_NoData(t *testing.T) {
	s, _, _, _ := newTestService()

	_, err := s.HeroStatistics(context.Background(), "ana")
	assert.True(t, errors.Is(err, chart.ErrNoData))
}

func TestStatus(t *testing.T) {
	s, _, _, _ := newTestService()

	res, err := s.Status()
	require.NoError(t, err)
	assert.Nil(t, res.Image)
	assert.Contains(t, res.Caption, "*S24*")
	assert.Contains(t, res.Caption, `2024\-01\-01`)
	assert.Contains(t, res.Caption, "*3*")
	assert.Contains(t, res.Caption, "1 hour ago")

	s.Roster = &fakeRoster{}
	_, err = s.Status()
	assert.True(t, errors.Is(err, roster.ErrNotReady))
}

package armory

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"overwatch-telegram-bot/internal/types"
)

const (
	payloadIndex       = "index"
	payloadHeroConfigs = "hero_configs"
	payloadLeaderboard = "hero_leaderboard"

	seasonDateLayout = "2006-01-02"
)

var validate = validator.New()

type envelope struct {
	Code    *int    `json:"code" validate:"required"`
	Message *string `json:"message" validate:"required"`
}

type rawIndex struct {
	envelope
	Data *rawIndexData `json:"data" validate:"required"`
}

type rawIndexData struct {
	HeroConfigs string      `json:"hero_configs" validate:"required,url"`
	Seasons     []rawSeason `json:"seasons" validate:"required,dive"`
}

type rawSeason struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
	Desc string `json:"desc" validate:"required"`
}

type rawHeroConfigs struct {
	HeroConfigs []rawHero `json:"heroConfigs" validate:"required,dive"`
}

type rawHero struct {
	ID      string   `json:"id" validate:"required"`
	Name    string   `json:"name" validate:"required"`
	HeadSrc string   `json:"headSrc" validate:"required,url"`
	Type    string   `json:"type" validate:"required,oneof=Tank Damage Support"`
	PicList []string `json:"picList" validate:"min=3,dive,url"`
}

type rawLeaderboard struct {
	envelope
	Data []rawLeaderboardEntry `json:"data" validate:"required,dive"`
}

type rawLeaderboardEntry struct {
	HeroID         string   `json:"hero_id" validate:"required"`
	HeroType       string   `json:"hero_type" validate:"required,oneof=1 2 3"`
	SelectionRatio *float64 `json:"selection_ratio" validate:"required"`
	BanRatio       *float64 `json:"ban_ratio" validate:"required"`
	WinRatio       *float64 `json:"win_ratio" validate:"required"`
	KDA            *float64 `json:"kda" validate:"required"`
	DS             string   `json:"ds" validate:"required"`
}

// IndexData is the normalized /index payload.
type IndexData struct {
	HeroConfigsURL string
	Seasons        []types.Season
}

// decode unmarshals body into v and runs the struct validation rules,
// returning a *ValidationError for either failure.
func decode(payload string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		dumpPayload(payload, body)
		return &ValidationError{Payload: payload, Err: err}
	}
	if err := validate.Struct(v); err != nil {
		dumpPayload(payload, body)
		return &ValidationError{Payload: payload, Err: err}
	}
	return nil
}

func dumpPayload(payload string, body []byte) {
	if !log.IsLevelEnabled(log.DebugLevel) {
		return
	}
	log.Debugf("rejected %s payload:\n%s", payload, spew.Sdump(body))
}

// ParseIndex validates the /index response and extracts the season list
// and the hero configuration URL.
func ParseIndex(body []byte) (IndexData, error) {
	var raw rawIndex
	if err := decode(payloadIndex, body, &raw); err != nil {
		return IndexData{}, err
	}

	seasons := make([]types.Season, 0, len(raw.Data.Seasons))
	for _, s := range raw.Data.Seasons {
		start, end, err := ParseSeasonRange(s.Desc)
		if err != nil {
			return IndexData{}, &ValidationError{
				Payload: payloadIndex,
				Err:     errors.Wrapf(err, "season %s", s.ID),
			}
		}
		seasons = append(seasons, types.Season{
			ID:        s.ID,
			Name:      s.Name,
			StartDate: start,
			EndDate:   end,
		})
	}

	return IndexData{
		HeroConfigsURL: raw.Data.HeroConfigs,
		Seasons:        seasons,
	}, nil
}

// ParseSeasonRange extracts the start and end dates from a season
// description. The armory formats it as one marker character, the start
// date, one separator, the end date and a trailing marker, e.g.
// "×2024-01-01~2024-03-01×". Offsets are counted in characters.
func ParseSeasonRange(desc string) (string, string, error) {
	r := []rune(desc)
	if len(r) < 22 {
		return "", "", errors.Errorf("season description %q too short", desc)
	}

	start := string(r[1:11])
	end := string(r[12:22])
	if _, err := time.Parse(seasonDateLayout, start); err != nil {
		return "", "", errors.Wrapf(err, "season start date in %q", desc)
	}
	if _, err := time.Parse(seasonDateLayout, end); err != nil {
		return "", "", errors.Wrapf(err, "season end date in %q", desc)
	}
	return start, end, nil
}

// ParseHeroConfigs validates the hero configuration document.
func ParseHeroConfigs(body []byte) ([]types.Hero, error) {
	var raw rawHeroConfigs
	if err := decode(payloadHeroConfigs, body, &raw); err != nil {
		return nil, err
	}

	heroes := make([]types.Hero, 0, len(raw.HeroConfigs))
	for _, h := range raw.HeroConfigs {
		heroes = append(heroes, types.Hero{
			ID:     h.ID,
			Name:   h.Name,
			Role:   types.HeroRole(strings.ToLower(h.Type)),
			Avatar: h.HeadSrc,
			Pictures: types.HeroPictures{
				P960x666:  h.PicList[0],
				P1600x760: h.PicList[1],
				P2600x760: h.PicList[2],
			},
		})
	}
	return heroes, nil
}

// ParseLeaderboard validates a /hero_leaderboard response.
func ParseLeaderboard(body []byte) ([]types.LeaderboardEntry, error) {
	var raw rawLeaderboard
	if err := decode(payloadLeaderboard, body, &raw); err != nil {
		return nil, err
	}

	entries := make([]types.LeaderboardEntry, 0, len(raw.Data))
	for _, e := range raw.Data {
		entries = append(entries, types.LeaderboardEntry{
			HeroID:         e.HeroID,
			SelectionRatio: *e.SelectionRatio,
			BanRatio:       *e.BanRatio,
			WinRatio:       *e.WinRatio,
			KDA:            *e.KDA,
			Date:           e.DS,
		})
	}
	return entries, nil
}

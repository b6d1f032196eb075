package types

import "strings"

// Season is a competitive season as listed by the armory index.
type Season struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type HeroRole string

const (
	RoleTank    HeroRole = "tank"
	RoleDamage  HeroRole = "damage"
	RoleSupport HeroRole = "support"
)

// HeroPictures holds the three fixed-resolution hero artworks.
type HeroPictures struct {
	P960x666  string `json:"960x666"`
	P1600x760 string `json:"1600x760"`
	P2600x760 string `json:"2600x760"`
}

type Hero struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Role     HeroRole     `json:"role"`
	Avatar   string       `json:"avatar"`
	Pictures HeroPictures `json:"pictures"`
}

// Rank is a competitive skill tier. The empty Rank means all ranks.
type Rank string

const (
	RankBronze      Rank = "bronze"
	RankSilver      Rank = "silver"
	RankGold        Rank = "gold"
	RankPlatinum    Rank = "platinum"
	RankDiamond     Rank = "diamond"
	RankMaster      Rank = "master"
	RankGrandmaster Rank = "grandmaster"
	RankChampion    Rank = "champion"
)

// Ranks lists every tier from lowest to highest.
var Ranks = []Rank{
	RankBronze,
	RankSilver,
	RankGold,
	RankPlatinum,
	RankDiamond,
	RankMaster,
	RankGrandmaster,
	RankChampion,
}

// AllRanksLabel is the display label used when no rank filter applies.
const AllRanksLabel = "全段位"

var RankLabels = map[Rank]string{
	RankBronze:      "青铜",
	RankSilver:      "白银",
	RankGold:        "黄金",
	RankPlatinum:    "白金",
	RankDiamond:     "钻石",
	RankMaster:      "大师",
	RankGrandmaster: "宗师",
	RankChampion:    "英杰",
}

// Label returns the localized display label, AllRanksLabel for the empty rank.
func (r Rank) Label() string {
	if r == "" {
		return AllRanksLabel
	}
	if label, ok := RankLabels[r]; ok {
		return label
	}
	return string(r)
}

// Title returns the rank name with its first letter upper-cased, e.g. "Grandmaster".
func (r Rank) Title() string {
	if r == "" {
		return ""
	}
	s := string(r)
	return strings.ToUpper(s[:1]) + s[1:]
}

// LeaderboardEntry is one hero's ratios within a (season, rank) snapshot.
type LeaderboardEntry struct {
	HeroID         string  `json:"hero_id" msgpack:"hero_id"`
	SelectionRatio float64 `json:"selection_ratio" msgpack:"selection_ratio"`
	BanRatio       float64 `json:"ban_ratio" msgpack:"ban_ratio"`
	WinRatio       float64 `json:"win_ratio" msgpack:"win_ratio"`
	KDA            float64 `json:"kda" msgpack:"kda"`
	Date           string  `json:"date" msgpack:"date"`
}

// BaseData is the result of the startup fetch.
type BaseData struct {
	Seasons []Season
	Heroes  []Hero
}

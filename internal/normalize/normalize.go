package normalize

import (
	"strings"

	"golang.org/x/text/cases"

	"overwatch-telegram-bot/internal/types"
)

// heroAliases maps names players still use to the hero's current name.
var heroAliases = map[string]string{
	"麦克雷":  "卡西迪",
	"士兵76": "士兵：76",
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// IsAllRanks reports whether input asks for no rank filter.
func IsAllRanks(input string) bool {
	input = strings.TrimSpace(input)
	return input == "" || input == types.AllRanksLabel
}

// Rank resolves free text to a rank by identifier (case-insensitive) or by
// localized label. It reports false for the all-ranks input and for
// anything it does not recognise.
func Rank(input string) (types.Rank, bool) {
	if IsAllRanks(input) {
		return "", false
	}

	folded := fold(input)
	for _, rank := range types.Ranks {
		if string(rank) == folded {
			return rank, true
		}
	}
	for _, rank := range types.Ranks {
		if fold(types.RankLabels[rank]) == folded {
			return rank, true
		}
	}
	return "", false
}

// HeroID resolves free text to a hero id, following known renames first
// and then matching id or display name case-insensitively.
func HeroID(input string, heroes map[string]types.Hero) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	if target, ok := heroAliases[input]; ok {
		return HeroID(target, heroes)
	}

	folded := fold(input)
	for id, hero := range heroes {
		if fold(id) == folded || fold(hero.Name) == folded {
			return id, true
		}
	}
	return "", false
}

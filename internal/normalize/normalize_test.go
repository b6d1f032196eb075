package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"overwatch-telegram-bot/internal/types"
)

func TestRank_Labels(t *testing.T) {
	for rank, label := range types.RankLabels {
		got, ok := Rank(label)
		assert.True(t, ok, label)
		assert.Equal(t, rank, got, label)
		assert.Equal(t, label, got.Label())
	}
}

func TestRank_Identifiers(t *testing.T) {
	for _, input := range []string{"gold", "Gold", "GOLD", " gold "} {
		got, ok := Rank(input)
		assert.True(t, ok, input)
		assert.Equal(t, types.RankGold, got, input)
	}

	got, ok := Rank("GrandMaster")
	assert.True(t, ok)
	assert.Equal(t, types.RankGrandmaster, got)
}

func TestRank_Unresolved(t *testing.T) {
	for _, input := range []string{"", "   ", "全段位", "gld", "黄金段位", "top500"} {
		got, ok := Rank(input)
		assert.False(t, ok, input)
		assert.Equal(t, types.Rank(""), got, input)
	}
}

func TestIsAllRanks(t *testing.T) {
	assert.True(t, IsAllRanks(""))
	assert.True(t, IsAllRanks(" 全段位 "))
	assert.False(t, IsAllRanks("gold"))
	assert.False(t, IsAllRanks("gld"))
}

func testHeroes() map[string]types.Hero {
	return map[string]types.Hero{
		"cassidy":    {ID: "cassidy", Name: "卡西迪", Role: types.RoleDamage},
		"soldier-76": {ID: "soldier-76", Name: "士兵：76", Role: types.RoleDamage},
		"ana":        {ID: "ana", Name: "Ana", Role: types.RoleSupport},
		"reinhardt":  {ID: "reinhardt", Name: "莱因哈特", Role: types.RoleTank},
	}
}

func TestHeroID_IdentityAndName(t *testing.T) {
	heroes := testHeroes()

	for id, hero := range heroes {
		got, ok := HeroID(id, heroes)
		assert.True(t, ok, id)
		assert.Equal(t, id, got)

		got, ok = HeroID(hero.Name, heroes)
		assert.True(t, ok, hero.Name)
		assert.Equal(t, id, got)
	}

	got, ok := HeroID("ANA", heroes)
	assert.True(t, ok)
	assert.Equal(t, "ana", got)

	got, ok = HeroID("Reinhardt", heroes)
	assert.True(t, ok)
	assert.Equal(t, "reinhardt", got)
}

func TestHeroID_Aliases(t *testing.T) {
	heroes := testHeroes()

	mccree, ok := HeroID("麦克雷", heroes)
	assert.True(t, ok)
	cassidy, _ := HeroID("卡西迪", heroes)
	assert.Equal(t, cassidy, mccree)
	assert.Equal(t, "cassidy", mccree)

	soldier, ok := HeroID("士兵76", heroes)
	assert.True(t, ok)
	assert.Equal(t, "soldier-76", soldier)
}

func TestHeroID_NotFound(t *testing.T) {
	heroes := testHeroes()

	for _, input := range []string{"", "  ", "genji", "安"} {
		_, ok := HeroID(input, heroes)
		assert.False(t, ok, input)
	}

	_, ok := HeroID("麦克雷", map[string]types.Hero{})
	assert.False(t, ok)
}

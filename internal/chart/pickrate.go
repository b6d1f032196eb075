package chart

import (
	"fmt"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"overwatch-telegram-bot/internal/types"
)

const (
	pickRateWidth   = 600
	pickRateRow     = 24
	pickRateChrome  = 120
	pickBarWidth    = 12
	banBarWidth     = 4
	pickBarOffset   = 0.12
	banBarOffset    = -0.22
	pickRateTitleFS = 14
)

var roleColors = map[types.HeroRole]drawing.Color{
	types.RoleTank:    drawing.ColorFromHex("FDBF6F"),
	types.RoleDamage:  drawing.ColorFromHex("A6CEE3"),
	types.RoleSupport: drawing.ColorFromHex("B2DF8A"),
}

// PickRateRow is one hero on the pick rate chart. Rates are percentages.
type PickRateRow struct {
	Name     string
	Role     types.HeroRole
	PickRate float64
	BanRate  float64
}

// PickRate draws one horizontal bar per hero, sorted by pick rate
// descending and coloured by role, each paired with a thin ban rate bar.
func (r *Renderer) PickRate(rows []PickRateRow, seasonName, rankLabel string) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	sorted := make([]PickRateRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PickRate > sorted[j].PickRate
	})

	n := len(sorted)
	labels := make([]chart.Tick, n+2)
	labels[0] = chart.Tick{Value: -1}
	labels[n+1] = chart.Tick{Value: float64(n)}

	maxRate := 0.0
	series := make([]chart.Series, 0, 2*n)
	for i, row := range sorted {
		pos := float64(n - 1 - i)
		labels[n-i] = chart.Tick{Value: pos, Label: row.Name}

		maxRate = max(maxRate, row.PickRate, row.BanRate)
		series = append(series,
			horizontalBar(row.Name, pos+pickBarOffset, row.PickRate, roleColor(row.Role), pickBarWidth),
			horizontalBar(row.Name, pos+banBarOffset, row.BanRate, banColor, banBarWidth),
		)
	}

	positions := make([]chart.Tick, len(labels))
	for i, t := range labels {
		positions[i] = chart.Tick{Value: t.Value}
	}

	c := chart.Chart{
		Title:      fmt.Sprintf("英雄选取率和禁用率 %s %s", seasonName, rankLabel),
		TitleStyle: chart.Style{FontSize: pickRateTitleFS, FontColor: darkText},
		Width:      pickRateWidth,
		Height:     n*pickRateRow + pickRateChrome,
		Font:       r.font,
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 10, Right: 30, Bottom: 10},
			FillColor: drawing.ColorWhite,
		},
		XAxis: chart.XAxis{
			Name:  "选取率 / 禁用率 (%)",
			Ticks: rateTicks(maxRate),
		},
		// Hero names sit on the left axis. The hidden primary axis carries
		// the same positions because the secondary range is derived from it.
		YAxis: chart.YAxis{
			Style: chart.Hidden(),
			Ticks: positions,
		},
		YAxisSecondary: chart.YAxis{
			Ticks: labels,
		},
		Series: series,
	}

	return render(c)
}

func roleColor(role types.HeroRole) drawing.Color {
	if c, ok := roleColors[role]; ok {
		return c
	}
	return drawing.ColorFromHex("999999")
}

func horizontalBar(name string, y, value float64, color drawing.Color, width float64) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name:    name,
		YAxis:   chart.YAxisSecondary,
		XValues: []float64{0, value},
		YValues: []float64{y, y},
		Style: chart.Style{
			StrokeColor: color,
			StrokeWidth: width,
		},
	}
}

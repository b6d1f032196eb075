package chart

import (
	"bytes"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"math"
	"sort"

	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"

	"overwatch-telegram-bot/internal/types"
)

const (
	heroWidth  = 800
	heroHeight = 450

	// The hero picture is scaled to this width and shifted left so the
	// hero stays in frame.
	backgroundWidth  = 960
	backgroundOffset = -80

	watermarkSize = 14
	watermarkTop  = 10
)

var (
	rankColors = map[types.Rank]drawing.Color{
		types.RankBronze:      drawing.ColorFromHex("A25C37"),
		types.RankSilver:      drawing.ColorFromHex("727576"),
		types.RankGold:        drawing.ColorFromHex("D9BC65"),
		types.RankPlatinum:    drawing.ColorFromHex("A6C4D1"),
		types.RankDiamond:     drawing.ColorFromHex("ADC3E9"),
		types.RankMaster:      drawing.ColorFromHex("C5DBD4"),
		types.RankGrandmaster: drawing.ColorFromHex("A8ACD0"),
		types.RankChampion:    drawing.ColorFromHex("C4B1D5"),
	}
	winHigh = drawing.ColorFromHex("549E3F")
	winLow  = drawing.ColorFromHex("D0352B")
)

// RankRow is one rank's figures for a single hero. Rates are percentages.
type RankRow struct {
	Rank     types.Rank
	PickRate float64
	BanRate  float64
	WinRate  float64
}

// HeroStatistics draws per-rank pick, ban and win rates for a hero over its
// background picture. A missing or undecodable picture leaves a plain dark
// background.
func (r *Renderer) HeroStatistics(background []byte, rows []RankRow, date string) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	canvas := image.NewRGBA(image.Rect(0, 0, heroWidth, heroHeight))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.RGBA{A: 255}), image.Point{}, xdraw.Src)
	if len(background) > 0 {
		if err := drawBackground(canvas, background); err != nil {
			log.Warnf("Skipping hero background: %v", err)
		}
	}
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.RGBA{A: 128}), image.Point{}, xdraw.Over)

	overlay, err := renderImage(r.heroChart(rows))
	if err != nil {
		return nil, err
	}
	xdraw.Draw(canvas, canvas.Bounds(), overlay, image.Point{}, xdraw.Over)

	r.watermark(canvas, "国服 "+date+" 数据来源于官网")

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, errors.Wrap(err, "could not encode hero chart")
	}
	return buf.Bytes(), nil
}

func drawBackground(dst *image.RGBA, raw []byte) error {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(err, "could not decode picture")
	}

	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return errors.New("empty picture")
	}
	height := b.Dy() * backgroundWidth / b.Dx()
	target := image.Rect(backgroundOffset, 0, backgroundOffset+backgroundWidth, height)
	xdraw.CatmullRom.Scale(dst, target, src, b, xdraw.Over, nil)
	return nil
}

func (r *Renderer) heroChart(rows []RankRow) chart.Chart {
	sorted := make([]RankRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rankIndex(sorted[i].Rank) < rankIndex(sorted[j].Rank)
	})

	n := len(sorted)
	ticks := make([]chart.Tick, 0, n+2)
	ticks = append(ticks, chart.Tick{Value: -0.6})

	top := 20.0
	winMin, winMax := 40.0, 60.0
	series := make([]chart.Series, 0, 3*n)
	for i, row := range sorted {
		x := float64(i)
		ticks = append(ticks, chart.Tick{Value: x, Label: row.Rank.Label()})

		top = max(top, math.Ceil(max(row.PickRate, row.BanRate)/5)*5)
		winMin = min(winMin, math.Floor(row.WinRate/5)*5)
		winMax = max(winMax, math.Ceil(row.WinRate/5)*5)

		pickColor := rankColors[row.Rank].WithAlpha(191)
		series = append(series,
			verticalBar(x-0.12, row.PickRate, pickColor, 28),
			verticalBar(x+0.2, row.BanRate, banColor, 8),
			winPoint(x, row.WinRate),
		)
	}
	ticks = append(ticks, chart.Tick{Value: float64(n-1) + 0.6})

	axis := chart.Style{FontColor: lightText, StrokeColor: lightText, FontSize: 11}
	return chart.Chart{
		Width:  heroWidth,
		Height: heroHeight,
		Font:   r.font,
		Background: chart.Style{
			Padding:     chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 10},
			FillColor:   chart.ColorTransparent,
			StrokeColor: chart.ColorTransparent,
		},
		Canvas: chart.Style{
			FillColor:   chart.ColorTransparent,
			StrokeColor: chart.ColorTransparent,
		},
		XAxis: chart.XAxis{
			Style: chart.Style{FontColor: lightText, StrokeColor: lightText, FontSize: 16},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:           "选取率 / 禁用率",
			NameStyle:      axis,
			Style:          axis,
			Range:          &chart.ContinuousRange{Min: 0, Max: top},
			ValueFormatter: percentFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "胜率",
			NameStyle:      axis,
			Style:          axis,
			Range:          &chart.ContinuousRange{Min: winMin, Max: winMax},
			ValueFormatter: percentFormatter,
		},
		Series: series,
	}
}

func rankIndex(rank types.Rank) int {
	for i, r := range types.Ranks {
		if r == rank {
			return i
		}
	}
	return len(types.Ranks)
}

func verticalBar(x, value float64, color drawing.Color, width float64) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		XValues: []float64{x, x},
		YValues: []float64{0, value},
		Style: chart.Style{
			StrokeColor: color,
			StrokeWidth: width,
		},
	}
}

func winPoint(x, winRate float64) chart.ContinuousSeries {
	c := winLow
	if winRate >= 50 {
		c = winHigh
	}
	return chart.ContinuousSeries{
		YAxis:   chart.YAxisSecondary,
		XValues: []float64{x},
		YValues: []float64{winRate},
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotColor:    c,
			DotWidth:    6,
		},
	}
}

// watermark writes text centred at the top of img in translucent white.
func (r *Renderer) watermark(img *image.RGBA, text string) {
	face := truetype.NewFace(r.font, &truetype.Options{Size: watermarkSize, DPI: 72})
	defer face.Close()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 64, G: 64, B: 64, A: 64}),
		Face: face,
	}
	width := d.MeasureString(text).Round()
	ascent := face.Metrics().Ascent.Round()
	d.Dot = fixed.P((img.Bounds().Dx()-width)/2, watermarkTop+ascent)
	d.DrawString(text)
}

package chart

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"os"

	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no statistics to draw")

var (
	lightText = drawing.Color{R: 230, G: 230, B: 230, A: 255}
	darkText  = drawing.Color{R: 60, G: 60, B: 60, A: 255}
	banColor  = drawing.ColorFromHex("6A3D9A")
)

// Renderer draws statistics charts as PNG images.
type Renderer struct {
	font *truetype.Font
}

// NewRenderer loads the TTF font at fontPath, falling back to the chart
// library's bundled font when the path is empty. The bundled font has no
// CJK glyphs, so deployments serving Chinese hero names should set one.
func NewRenderer(fontPath string) (*Renderer, error) {
	if fontPath == "" {
		f, err := chart.GetDefaultFont()
		if err != nil {
			return nil, errors.Wrap(err, "could not load default font")
		}
		return &Renderer{font: f}, nil
	}

	raw, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read font %s", fontPath)
	}
	f, err := truetype.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse font %s", fontPath)
	}
	return &Renderer{font: f}, nil
}

func render(c chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, errors.Wrap(err, "could not render chart")
	}
	return buf.Bytes(), nil
}

func renderImage(c chart.Chart) (image.Image, error) {
	raw, err := render(c)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "could not decode rendered chart")
	}
	return img, nil
}

// rateTicks returns percentage ticks from zero covering limit in at most
// eight steps.
func rateTicks(limit float64) []chart.Tick {
	step := 1.0
	for _, s := range []float64{1, 2, 5, 10, 20, 25, 50} {
		step = s
		if limit/s <= 8 {
			break
		}
	}

	top := math.Ceil(limit/step) * step
	if top <= 0 {
		top = step
	}

	var ticks []chart.Tick
	for v := 0.0; v <= top+step/2; v += step {
		ticks = append(ticks, chart.Tick{Value: v, Label: percentLabel(v)})
	}
	return ticks
}

func percentLabel(v float64) string {
	return fmt.Sprintf("%g%%", v)
}

func percentFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return percentLabel(math.Round(f*10) / 10)
	}
	return ""
}

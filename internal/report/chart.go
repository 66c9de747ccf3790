package report

import (
	"errors"
	"os"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"

	"arbitrage-finder/internal/analysis"
)

const (
	chartBarWidth   = 40
	chartBarSpacing = 20
	chartMinWidth   = 1024
	chartHeight     = 600
)

// WriteMedianChart renders one bar per group (median in USD) as a PNG.
func WriteMedianChart(path, title string, groups []analysis.Group) (err error) {
	if len(groups) == 0 {
		return errors.New("no groups to chart")
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	bars := make([]chart.Value, 0, len(groups))
	maxValue := 0.0
	for _, g := range groups {
		v := g.Median.InexactFloat64()
		if v > maxValue {
			maxValue = v
		}
		bars = append(bars, chart.Value{Label: strings.Join(g.Keys, " / "), Value: v})
	}
	if maxValue <= 0 {
		maxValue = 1
	}

	width := len(bars)*(chartBarWidth+chartBarSpacing) + 200
	if width < chartMinWidth {
		width = chartMinWidth
	}

	graph := chart.BarChart{
		Title:  title,
		Width:  width,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 60},
		},
		BarWidth:   chartBarWidth,
		BarSpacing: chartBarSpacing,
		YAxis: chart.YAxis{
			Name: "Median (USD)",
			// 固定从 0 开始, 否则单组数据时 range 为 0
			Range: &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1},
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.0f")
			},
		},
		Bars: bars,
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeFile(file, &err)

	return graph.Render(chart.PNG, file)
}

package host

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// SweepPoint is the output of one phase ordering.
type SweepPoint struct {
	Phases []int64
	Output int64
}

// Sweep holds one point per ordering, in Permutations order.
type Sweep []SweepPoint

// Best returns the point with the highest output, the earliest on ties.
func (s Sweep) Best() SweepPoint {
	if len(s) == 0 {
		return SweepPoint{}
	}
	best := 0
	for i := range s {
		if s[i].Output > s[best].Output {
			best = i
		}
	}
	return s[best]
}

func phaseLabel(phases []int64) string {
	parts := make([]string, len(phases))
	for i, p := range phases {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, "")
}

// RenderChart writes an HTML bar chart of output per ordering.
func (s Sweep) RenderChart(w io.Writer, title string) error {
	labels := make([]string, len(s))
	data := make([]opts.BarData, len(s))
	for i, p := range s {
		labels[i] = phaseLabel(p.Phases)
		data[i] = opts.BarData{Value: p.Output}
	}

	best := s.Best()
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("best order %s signal %d", phaseLabel(best.Phases), best.Output),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	bar.SetXAxis(labels).AddSeries("signal", data)
	return bar.Render(w)
}

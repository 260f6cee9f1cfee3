// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package report

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoData is returned by Graph when no passing run has a measurement.
var ErrNoData = errors.New("report: no passing runs to plot")

// Series is the median ns/op per worker count for one slot count.
type Series struct {
	Capacity int
	Points   plotter.XYs // x: producers+consumers, y: median ns/op
}

// BuildSeries groups passing runs by slot count and reduces each worker
// count to the median ns/op. Series are sorted by slot count and points
// by worker count.
func BuildSeries(sessions []Session) []Series {
	samples := make(map[int]map[int][]float64)
	for _, s := range sessions {
		for _, r := range s.Runs {
			if !r.Passed || r.NsPerOp <= 0 {
				continue
			}
			byWorkers, ok := samples[r.Capacity]
			if !ok {
				byWorkers = make(map[int][]float64)
				samples[r.Capacity] = byWorkers
			}
			w := r.Producers + r.Consumers
			byWorkers[w] = append(byWorkers[w], r.NsPerOp)
		}
	}

	var out []Series
	for capacity, byWorkers := range samples {
		workers := make([]int, 0, len(byWorkers))
		for w := range byWorkers {
			workers = append(workers, w)
		}
		slices.Sort(workers)

		pts := make(plotter.XYs, len(workers))
		for i, w := range workers {
			pts[i].X = float64(w)
			pts[i].Y = median(byWorkers[w])
		}
		out = append(out, Series{Capacity: capacity, Points: pts})
	}
	slices.SortFunc(out, func(a, b Series) int { return a.Capacity - b.Capacity })
	return out
}

// Graph renders ns/op against worker count, one line per slot count, and
// saves it to path. The image format follows the file extension.
func Graph(sessions []Session, path string) error {
	series := BuildSeries(sessions)
	if len(series) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = "slotq stress: time per item vs. workers"
	p.X.Label.Text = "producers + consumers"
	p.Y.Label.Text = "ns per item (median)"
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	colors := plotutil.SoftColors
	shapes := []draw.GlyphDrawer{
		draw.CircleGlyph{},
		draw.SquareGlyph{},
		draw.TriangleGlyph{},
		draw.CrossGlyph{},
		draw.PlusGlyph{},
	}

	for i, s := range series {
		line, err := plotter.NewLine(s.Points)
		if err != nil {
			return fmt.Errorf("line for %d slots: %w", s.Capacity, err)
		}
		line.Color = colors[i%len(colors)]

		points, err := plotter.NewScatter(s.Points)
		if err != nil {
			return fmt.Errorf("scatter for %d slots: %w", s.Capacity, err)
		}
		points.GlyphStyle.Radius = vg.Points(4)
		points.Color = colors[i%len(colors)]
		points.Shape = shapes[i%len(shapes)]

		p.Add(line, points)
		p.Legend.Add(fmt.Sprintf("%d slots", s.Capacity), line, points)
	}

	if err := p.Save(10*vg.Inch, 7*vg.Inch, path); err != nil {
		return fmt.Errorf("save graph %s: %w", path, err)
	}
	return nil
}

func median(vals []float64) float64 {
	s := slices.Clone(vals)
	slices.Sort(s)
	n := len(s)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

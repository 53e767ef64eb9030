package service

import (
	"math"
	"sort"
	"strings"
	"time"
)

const (
	axisCeiling       = 5000.0
	defaultAxisMax    = 100.0
	goalHeadroom      = 1.1
	maxAxisDivisions  = 5
	sparklineFallback = '▁'
)

var axisIntervals = []float64{10, 20, 25, 50, 100, 200, 250, 500, 1000}

type AxisScale struct {
	Max      float64
	Interval float64
	// Capped is set when the data exceeded the ceiling and bars will clip.
	Capped bool
}

// Gridlines returns the interior and top gridline values, ascending.
func (a AxisScale) Gridlines() []float64 {
	if a.Interval <= 0 {
		return nil
	}
	lines := make([]float64, 0, int(a.Max/a.Interval))
	for v := a.Interval; v <= a.Max+1e-9; v += a.Interval {
		lines = append(lines, v)
	}
	return lines
}

// ScaleAxis picks a rounded axis maximum that fits every value and leaves a
// positive goal visible below the top.
func ScaleAxis(values []float64, goal float64) AxisScale {
	top := 0.0
	for _, v := range values {
		if isFinite(v) && v > top {
			top = v
		}
	}
	if goal > 0 && goal*goalHeadroom > top {
		top = goal * goalHeadroom
	}
	if top <= 0 {
		return AxisScale{Max: defaultAxisMax, Interval: axisInterval(defaultAxisMax)}
	}

	max := roundAxisMax(top)
	capped := false
	if max > axisCeiling {
		max = axisCeiling
		capped = true
	}
	return AxisScale{Max: max, Interval: axisInterval(max), Capped: capped}
}

func roundAxisMax(v float64) float64 {
	var step float64
	switch {
	case v <= 500:
		step = 100
	case v <= 1000:
		step = 200
	case v <= 2500:
		step = 500
	default:
		step = 1000
	}
	return math.Ceil(v/step) * step
}

func axisInterval(max float64) float64 {
	for _, step := range axisIntervals {
		if max/step <= maxAxisDivisions {
			return step
		}
	}
	return math.Ceil(max / maxAxisDivisions)
}

type DatedValue struct {
	Date  time.Time
	Value float64
}

type Bin struct {
	Label string
	Start time.Time
	Total float64
	Count int
}

func (b Bin) Average() float64 {
	if b.Count == 0 {
		return 0
	}
	return b.Total / float64(b.Count)
}

// BinByDay returns one bin per calendar day for the days ending at end.
func BinByDay(points []DatedValue, end time.Time, days int) []Bin {
	if days <= 0 {
		return nil
	}
	last := beginningOfDay(end)
	first := last.AddDate(0, 0, -(days - 1))
	bins := make([]Bin, days)
	for i := range bins {
		d := first.AddDate(0, 0, i)
		bins[i] = Bin{Label: d.Format("01-02"), Start: d}
	}
	for _, p := range points {
		d := beginningOfDay(p.Date.In(end.Location()))
		if d.Before(first) || d.After(last) {
			continue
		}
		idx := daysBetween(first, d)
		bins[idx].Total += p.Value
		bins[idx].Count++
	}
	return bins
}

// BinByWeek groups into Monday-based weeks; the last bin contains end.
func BinByWeek(points []DatedValue, end time.Time, weeks int) []Bin {
	if weeks <= 0 {
		return nil
	}
	lastStart := beginningOfWeek(end)
	first := lastStart.AddDate(0, 0, -7*(weeks-1))
	limit := lastStart.AddDate(0, 0, 7)
	bins := make([]Bin, weeks)
	for i := range bins {
		d := first.AddDate(0, 0, 7*i)
		bins[i] = Bin{Label: d.Format("01-02"), Start: d}
	}
	for _, p := range points {
		d := beginningOfDay(p.Date.In(end.Location()))
		if d.Before(first) || !d.Before(limit) {
			continue
		}
		idx := daysBetween(first, d) / 7
		bins[idx].Total += p.Value
		bins[idx].Count++
	}
	return bins
}

// SortDated orders points oldest first.
func SortDated(points []DatedValue) {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline scales values between their own min and max. Non-finite values
// render as a gap.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	var b strings.Builder
	for _, v := range values {
		switch {
		case !isFinite(v):
			b.WriteRune(' ')
		case maxV == minV:
			b.WriteRune(sparklineFallback)
		default:
			ratio := (v - minV) / (maxV - minV)
			b.WriteRune(sparkRunes[int(math.Round(ratio*float64(len(sparkRunes)-1)))])
		}
	}
	return b.String()
}

// HorizontalBar draws value against the axis max, marking the goal column with '|'.
// Negative and non-finite values draw an empty bar.
func HorizontalBar(value float64, axis AxisScale, width int, goal float64) string {
	if width <= 0 || axis.Max <= 0 || !isFinite(axis.Max) {
		return ""
	}
	if !isFinite(value) || value < 0 {
		value = 0
	}
	filled := int(math.Round(math.Min(value, axis.Max) / axis.Max * float64(width)))
	if filled == 0 && value > 0 {
		filled = 1
	}
	if filled > width {
		filled = width
	}
	cells := []rune(strings.Repeat("#", filled) + strings.Repeat(" ", width-filled))
	if goal > 0 && goal <= axis.Max {
		col := int(math.Round(goal/axis.Max*float64(width))) - 1
		if col < 0 {
			col = 0
		}
		if cells[col] == ' ' {
			cells[col] = '|'
		} else {
			cells[col] = '+'
		}
	}
	return strings.TrimRight(string(cells), " ")
}

// WeeksSpanned counts the Monday-based weeks touched by the days ending at end.
func WeeksSpanned(end time.Time, days int) int {
	if days <= 0 {
		return 0
	}
	start := end.AddDate(0, 0, -(days - 1))
	return daysBetween(beginningOfWeek(start), beginningOfWeek(end))/7 + 1
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func beginningOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func beginningOfWeek(t time.Time) time.Time {
	d := beginningOfDay(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 12, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 12, 0, 0, 0, time.UTC)
	return int(math.Round(b.Sub(a).Hours() / 24))
}

package stats

import "math"

// Event is one recorded occurrence of a statistic, already resolved to the subject it is
// reported under (a player or a team).
type Event struct {
	Subject      int64
	Abbreviation string
	Period       int
}

// Input is everything Aggregate needs. Subjects fixes both the set and the output order.
type Input struct {
	Catalog  *Catalog
	Periods  int
	Subjects []int64
	Events   []Event
}

// Statline holds display values. Calculated sums are ints, percentages float64.
type Statline struct {
	BaseStats       map[string]int `json:"base_stats"`
	CalculatedStats map[string]any `json:"calculated_stats"`
}

type PeriodStatline struct {
	Period int `json:"period"`
	Statline
	Points int `json:"points"`
}

// Line is the full aggregate of one subject.
type Line struct {
	Subject     int64            `json:"-"`
	Periods     []PeriodStatline `json:"periods"`
	TotalPoints int              `json:"total_points"`
	TotalStats  Statline         `json:"total_stats"`
}

type cell struct {
	base map[string]int
	calc map[string]float64
}

func (c cell) value(abbr string) float64 {
	return float64(c.base[abbr]) + c.calc[abbr]
}

// Aggregate computes per-period and total statlines for every subject in in.Subjects.
// It has no side effects and is rebuilt from the events on every call.
func Aggregate(in Input) []Line {
	cat := in.Catalog
	if cat == nil {
		cat, _ = NewCatalog(nil)
	}
	periods := max(in.Periods, 0)

	index := make(map[int64]int, len(in.Subjects))
	grid := make([][]cell, len(in.Subjects))
	for i, subject := range in.Subjects {
		index[subject] = i
		grid[i] = make([]cell, periods)
		for p := range grid[i] {
			grid[i][p] = cat.newCell()
		}
	}

	for _, e := range in.Events {
		i, ok := index[e.Subject]
		if !ok || e.Period < 1 || e.Period > periods || !cat.isBase(e.Abbreviation) {
			continue
		}
		grid[i][e.Period-1].base[e.Abbreviation]++
	}

	lines := make([]Line, 0, len(in.Subjects))
	for i, subject := range in.Subjects {
		for _, c := range grid[i] {
			cat.evaluate(c)
		}
		line := cat.summarize(grid[i])
		line.Subject = subject
		lines = append(lines, line)
	}

	return lines
}

// Points returns total points per subject without building display statlines.
func Points(in Input) map[int64]int {
	points := make(map[int64]int, len(in.Subjects))
	for _, line := range Aggregate(in) {
		points[line.Subject] = line.TotalPoints
	}
	return points
}

func (c *Catalog) newCell() cell {
	cl := cell{
		base: make(map[string]int, len(c.base)),
		calc: make(map[string]float64, len(c.order)),
	}
	for _, abbr := range c.base {
		cl.base[abbr] = 0
	}
	for _, abbr := range c.order {
		cl.calc[abbr] = 0
	}
	return cl
}

func (c *Catalog) evaluate(cl cell) {
	for _, abbr := range c.order {
		if pair, ok := c.pairs[abbr]; ok {
			made, attempted := pair.resolve(cl)
			cl.calc[abbr] = percentage(made, attempted)
			continue
		}

		var total float64
		for _, comp := range c.types[abbr].Components {
			total += cl.value(comp.Abbreviation)
		}
		cl.calc[abbr] = total
	}
}

func (p percentagePair) resolve(cl cell) (made, attempted float64) {
	made = cl.value(p.made)
	attempted = cl.value(p.other)
	if p.missed {
		attempted += made
	}
	return made, attempted
}

// points weighs every computed type with a point value, percentages included. Only a
// percentage can contribute a fraction, so the period total is rounded once.
func (c *Catalog) points(cl cell) int {
	var points float64
	for _, group := range [][]string{c.base, c.sums, c.percentages} {
		for _, abbr := range group {
			if pv := c.types[abbr].PointValue; pv != 0 {
				points += cl.value(abbr) * float64(pv)
			}
		}
	}
	return int(math.Round(points))
}

func (c *Catalog) summarize(cells []cell) Line {
	line := Line{Periods: make([]PeriodStatline, 0, len(cells))}

	totalBase := make(map[string]int, len(c.base))
	totalSums := make(map[string]int, len(c.sums))
	made := make(map[string]float64, len(c.percentages))
	attempted := make(map[string]float64, len(c.percentages))

	for p, cl := range cells {
		for _, abbr := range c.base {
			totalBase[abbr] += cl.base[abbr]
		}
		for _, abbr := range c.sums {
			totalSums[abbr] += int(cl.calc[abbr])
		}
		for _, abbr := range c.percentages {
			m, a := c.pairs[abbr].resolve(cl)
			made[abbr] += m
			attempted[abbr] += a
		}

		points := c.points(cl)
		line.TotalPoints += points
		line.Periods = append(line.Periods, PeriodStatline{
			Period:   p + 1,
			Statline: c.display(cl.base, func(abbr string) any { return int(cl.calc[abbr]) }, cl.calc),
			Points:   points,
		})
	}

	totalPcts := make(map[string]float64, len(c.percentages))
	for _, abbr := range c.percentages {
		totalPcts[abbr] = percentage(made[abbr], attempted[abbr])
	}
	line.TotalStats = c.display(totalBase, func(abbr string) any { return totalSums[abbr] },
		totalPcts)

	return line
}

// display drops counters and types each calculated value for output.
func (c *Catalog) display(base map[string]int, sum func(abbr string) any,
	pcts map[string]float64) Statline {
	sl := Statline{
		BaseStats:       make(map[string]int, len(c.base)),
		CalculatedStats: make(map[string]any, len(c.order)),
	}
	for _, abbr := range c.base {
		if !c.counters[abbr] {
			sl.BaseStats[abbr] = base[abbr]
		}
	}
	for _, abbr := range c.sums {
		if !c.counters[abbr] {
			sl.CalculatedStats[abbr] = sum(abbr)
		}
	}
	for _, abbr := range c.percentages {
		if !c.counters[abbr] {
			sl.CalculatedStats[abbr] = pcts[abbr]
		}
	}
	return sl
}

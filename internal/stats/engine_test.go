package stats

import (
	"bytes"
	"encoding/json"
	"testing"

	"LeagueStatsApi/internal/assert"
)

func mustCatalog(t *testing.T, types []StatType) *Catalog {
	t.Helper()

	c, err := NewCatalog(types)
	assert.NilError(t, err)
	return c
}

func repeat(subject int64, abbr string, period, n int) []Event {
	events := make([]Event, 0, n)
	for range n {
		events = append(events, Event{Subject: subject, Abbreviation: abbr, Period: period})
	}
	return events
}

func TestAggregateSingleAndMultiPeriod(t *testing.T) {
	cat := mustCatalog(t, fieldGoalTypes())

	events := append(repeat(7, "FG_MA", 1, 3), repeat(7, "FG_MS", 1, 2)...)
	events = append(events, repeat(7, "FG_MA", 2, 1)...)

	lines := Aggregate(Input{Catalog: cat, Periods: 2, Subjects: []int64{7}, Events: events})
	assert.Equal(t, len(lines), 1)
	line := lines[0]
	assert.Equal(t, line.Subject, int64(7))
	assert.Equal(t, len(line.Periods), 2)

	p1 := line.Periods[0]
	assert.Equal(t, p1.Period, 1)
	assert.MapEqual(t, p1.BaseStats, map[string]int{"FG_MA": 3, "FG_MS": 2})
	assert.Equal(t, p1.CalculatedStats["FG_AT"], any(5))
	assert.Equal(t, p1.CalculatedStats["FG_PC"], any(60.0))
	assert.Equal(t, p1.Points, 6)

	p2 := line.Periods[1]
	assert.Equal(t, p2.Period, 2)
	assert.Equal(t, p2.CalculatedStats["FG_AT"], any(1))
	assert.Equal(t, p2.CalculatedStats["FG_PC"], any(100.0))
	assert.Equal(t, p2.Points, 2)

	assert.MapEqual(t, line.TotalStats.BaseStats, map[string]int{"FG_MA": 4, "FG_MS": 2})
	assert.Equal(t, line.TotalStats.CalculatedStats["FG_AT"], any(6))
	assert.Equal(t, line.TotalStats.CalculatedStats["FG_PC"], any(66.7))
	assert.Equal(t, line.TotalPoints, 8)
}

func TestAggregateTotalPercentageFromSummedComponents(t *testing.T) {
	cat := mustCatalog(t, fieldGoalTypes())

	events := append(repeat(1, "FG_MA", 1, 1), repeat(1, "FG_MS", 1, 1)...)
	events = append(events, repeat(1, "FG_MA", 2, 3)...)

	line := Aggregate(Input{Catalog: cat, Periods: 2, Subjects: []int64{1}, Events: events})[0]

	assert.Equal(t, line.Periods[0].CalculatedStats["FG_PC"], any(50.0))
	assert.Equal(t, line.Periods[1].CalculatedStats["FG_PC"], any(100.0))
	assert.Equal(t, line.TotalStats.CalculatedStats["FG_PC"], any(80.0))
}

func TestAggregateZeroAttempts(t *testing.T) {
	cat := mustCatalog(t, fieldGoalTypes())

	line := Aggregate(Input{Catalog: cat, Periods: 3, Subjects: []int64{1}})[0]

	for _, p := range line.Periods {
		assert.Equal(t, p.CalculatedStats["FG_PC"], any(0.0))
		assert.Equal(t, p.CalculatedStats["FG_AT"], any(0))
		assert.Equal(t, p.Points, 0)
	}
	assert.Equal(t, line.TotalStats.CalculatedStats["FG_PC"], any(0.0))
}

func TestAggregateCountersHidden(t *testing.T) {
	cat := mustCatalog(t, []StatType{
		{Abbreviation: "FT_MA", PointValue: 1},
		{Abbreviation: "FT_AT_C", IsCounter: true, Related: "FT_MS"},
		{Abbreviation: "FT_MS"},
		{Abbreviation: "FT_TRY", Kind: KindSum, IsCounter: true, Components: []Component{
			{Abbreviation: "FT_MA"}, {Abbreviation: "FT_MS"},
		}},
		{Abbreviation: "FT_PC", Kind: KindPercentage, Components: []Component{
			{Abbreviation: "FT_MA", Role: RoleMade},
			{Abbreviation: "FT_TRY", Role: RoleAttempted},
		}},
	})

	events := []Event{
		{Subject: 1, Abbreviation: "FT_MA", Period: 1},
		{Subject: 1, Abbreviation: "FT_AT_C", Period: 1},
		{Subject: 1, Abbreviation: "FT_MS", Period: 1},
		{Subject: 1, Abbreviation: "FT_MS", Period: 1},
	}
	line := Aggregate(Input{Catalog: cat, Periods: 1, Subjects: []int64{1}, Events: events})[0]

	for _, sl := range []Statline{line.Periods[0].Statline, line.TotalStats} {
		assert.NotContainsKey(t, sl.BaseStats, "FT_AT_C")
		assert.NotContainsKey(t, sl.CalculatedStats, "FT_TRY")
		assert.Equal(t, sl.BaseStats["FT_MA"], 1)
		assert.Equal(t, sl.CalculatedStats["FT_PC"], any(33.3))
	}
	assert.Equal(t, line.TotalPoints, 1)
}

func TestAggregateMissedRole(t *testing.T) {
	cat := mustCatalog(t, []StatType{
		{Abbreviation: "TP_MA", PointValue: 3},
		{Abbreviation: "TP_MS"},
		{Abbreviation: "TP_PC", Kind: KindPercentage, Components: []Component{
			{Abbreviation: "TP_MS", Role: RoleMissed},
			{Abbreviation: "TP_MA", Role: RoleMade},
		}},
	})

	events := append(repeat(1, "TP_MA", 1, 1), repeat(1, "TP_MS", 1, 3)...)
	line := Aggregate(Input{Catalog: cat, Periods: 1, Subjects: []int64{1}, Events: events})[0]

	assert.Equal(t, line.Periods[0].CalculatedStats["TP_PC"], any(25.0))
	assert.Equal(t, line.TotalPoints, 3)
}

func TestAggregateSkipsMalformedComposite(t *testing.T) {
	types := append(fieldGoalTypes(), StatType{
		Abbreviation: "BAD_PC", Kind: KindPercentage, Components: []Component{
			{Abbreviation: "FG_MA"}, {Abbreviation: "FG_MS"},
		},
	})
	cat := mustCatalog(t, types)
	assert.Equal(t, len(cat.Anomalies()), 1)

	events := repeat(1, "FG_MA", 1, 2)
	line := Aggregate(Input{Catalog: cat, Periods: 1, Subjects: []int64{1}, Events: events})[0]

	assert.NotContainsKey(t, line.TotalStats.CalculatedStats, "BAD_PC")
	assert.Equal(t, line.TotalStats.CalculatedStats["FG_PC"], any(100.0))
	assert.Equal(t, line.TotalPoints, 4)
}

func TestAggregatePercentagePoints(t *testing.T) {
	cat := mustCatalog(t, []StatType{
		{Abbreviation: "A_MA"},
		{Abbreviation: "A_MS"},
		{Abbreviation: "PTS_PC", Kind: KindPercentage, PointValue: 1, Components: []Component{
			{Abbreviation: "A_MA", Role: RoleMade},
			{Abbreviation: "A_MS", Role: RoleMissed},
		}},
	})

	events := append(repeat(1, "A_MA", 1, 1), repeat(1, "A_MS", 1, 1)...)
	events = append(events, repeat(1, "A_MA", 2, 2)...)
	events = append(events, repeat(1, "A_MS", 2, 1)...)
	line := Aggregate(Input{Catalog: cat, Periods: 2, Subjects: []int64{1}, Events: events})[0]

	assert.Equal(t, line.Periods[0].CalculatedStats["PTS_PC"], any(50.0))
	assert.Equal(t, line.Periods[0].Points, 50)
	assert.Equal(t, line.Periods[1].CalculatedStats["PTS_PC"], any(66.7))
	assert.Equal(t, line.Periods[1].Points, 67)
	assert.Equal(t, line.TotalPoints, 117)
}

func TestAggregateSkipsDependentsOfMalformedComposite(t *testing.T) {
	cat := mustCatalog(t, []StatType{
		{Abbreviation: "A_MA", PointValue: 1},
		{Abbreviation: "A_MS"},
		{Abbreviation: "BAD", Kind: KindPercentage, Components: []Component{
			{Abbreviation: "A_MA"}, {Abbreviation: "A_MS"},
		}},
		{Abbreviation: "DEP", Kind: KindSum, PointValue: 5, Components: []Component{
			{Abbreviation: "BAD"}, {Abbreviation: "A_MA"},
		}},
	})

	events := append(repeat(1, "A_MA", 1, 1), repeat(1, "A_MS", 1, 1)...)
	line := Aggregate(Input{Catalog: cat, Periods: 1, Subjects: []int64{1}, Events: events})[0]

	assert.NotContainsKey(t, line.Periods[0].CalculatedStats, "DEP")
	assert.NotContainsKey(t, line.TotalStats.CalculatedStats, "DEP")
	assert.Equal(t, line.TotalPoints, 1)
}

func TestAggregateEventPlacement(t *testing.T) {
	cat := mustCatalog(t, fieldGoalTypes())

	events := []Event{
		{Subject: 1, Abbreviation: "FG_MA", Period: 1},
		{Subject: 2, Abbreviation: "FG_MA", Period: 2},
		{Subject: 2, Abbreviation: "FG_MA", Period: 3},
		{Subject: 2, Abbreviation: "FG_MA", Period: 0},
		{Subject: 3, Abbreviation: "FG_MA", Period: 1},
		{Subject: 1, Abbreviation: "FG_AT", Period: 1},
		{Subject: 1, Abbreviation: "UNKNOWN", Period: 1},
	}
	lines := Aggregate(Input{Catalog: cat, Periods: 2, Subjects: []int64{1, 2}, Events: events})

	assert.Equal(t, len(lines), 2)
	assert.Equal(t, lines[0].Subject, int64(1))
	assert.Equal(t, lines[0].Periods[0].BaseStats["FG_MA"], 1)
	assert.Equal(t, lines[0].Periods[1].BaseStats["FG_MA"], 0)
	assert.Equal(t, lines[0].Periods[0].CalculatedStats["FG_AT"], any(1))
	assert.Equal(t, lines[1].Periods[0].BaseStats["FG_MA"], 0)
	assert.Equal(t, lines[1].Periods[1].BaseStats["FG_MA"], 1)
	assert.Equal(t, lines[1].TotalStats.BaseStats["FG_MA"], 1)
}

func TestAggregateNotStarted(t *testing.T) {
	cat := mustCatalog(t, fieldGoalTypes())

	line := Aggregate(Input{Catalog: cat, Periods: 0, Subjects: []int64{1},
		Events: repeat(1, "FG_MA", 1, 4)})[0]

	assert.Equal(t, len(line.Periods), 0)
	assert.Equal(t, line.TotalPoints, 0)
	assert.MapEqual(t, line.TotalStats.BaseStats, map[string]int{"FG_MA": 0, "FG_MS": 0})
	assert.Equal(t, line.TotalStats.CalculatedStats["FG_PC"], any(0.0))

	out, err := json.Marshal(line)
	assert.NilError(t, err)
	assert.StringContains(t, string(out), `"periods":[]`)
}

func TestAggregateEmptyCatalog(t *testing.T) {
	lines := Aggregate(Input{Periods: 2, Subjects: []int64{1},
		Events: repeat(1, "FG_MA", 1, 1)})

	assert.Equal(t, len(lines), 1)
	assert.Equal(t, len(lines[0].TotalStats.BaseStats), 0)
	assert.Equal(t, len(lines[0].TotalStats.CalculatedStats), 0)
}

func TestAggregateIdempotent(t *testing.T) {
	cat := mustCatalog(t, fieldGoalTypes())
	in := Input{
		Catalog:  cat,
		Periods:  2,
		Subjects: []int64{2, 1},
		Events: append(repeat(1, "FG_MA", 1, 3),
			append(repeat(2, "FG_MS", 2, 2), repeat(1, "FG_MS", 2, 1)...)...),
	}

	first, err := json.Marshal(Aggregate(in))
	assert.NilError(t, err)
	second, err := json.Marshal(Aggregate(in))
	assert.NilError(t, err)

	assert.True(t, bytes.Equal(first, second))
}

func TestAggregateNegativePoints(t *testing.T) {
	cat := mustCatalog(t, []StatType{
		{Abbreviation: "GOAL", PointValue: 1},
		{Abbreviation: "OWN_GOAL", PointValue: -1, IsNegative: true},
	})

	events := append(repeat(1, "GOAL", 1, 2), repeat(1, "OWN_GOAL", 1, 1)...)
	points := Points(Input{Catalog: cat, Periods: 1, Subjects: []int64{1}, Events: events})

	assert.Equal(t, points[1], 1)
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name      string
		made      float64
		attempted float64
		want      float64
	}{
		{name: "Zero Attempts", made: 0, attempted: 0, want: 0},
		{name: "Made Without Attempts", made: 3, attempted: 0, want: 0},
		{name: "Two Thirds", made: 4, attempted: 6, want: 66.7},
		{name: "One Third", made: 1, attempted: 3, want: 33.3},
		{name: "Half Up", made: 1, attempted: 8, want: 12.5},
		{name: "Rounds Away From Zero", made: 1, attempted: 16, want: 6.3},
		{name: "Perfect", made: 5, attempted: 5, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, percentage(tt.made, tt.attempted), tt.want)
		})
	}
}

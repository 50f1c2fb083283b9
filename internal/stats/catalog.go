package stats

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrCatalogCycle         = errors.New("statistic types form a dependency cycle")
	ErrDuplicateAbbrev      = errors.New("duplicate statistic abbreviation")
	ErrUnknownComponent     = errors.New("component references unknown statistic")
	ErrInvalidCalculation   = errors.New("invalid calculation kind")
	ErrInvalidComponentRole = errors.New("invalid component role")
)

// Kind is how a StatType's value is produced.
type Kind string

const (
	KindNone       Kind = "none"
	KindSum        Kind = "sum"
	KindPercentage Kind = "percentage"
)

func (k Kind) valid() bool {
	return k == KindNone || k == KindSum || k == KindPercentage
}

// Role tags a component of a percentage composite as its numerator or denominator.
type Role string

const (
	RoleNone      Role = ""
	RoleMade      Role = "made"
	RoleAttempted Role = "attempted"
	RoleMissed    Role = "missed"
)

func (r Role) valid() bool {
	return r == RoleNone || r == RoleMade || r == RoleAttempted || r == RoleMissed
}

type Component struct {
	Abbreviation string `json:"abbreviation" toml:"abbreviation"`
	Role         Role   `json:"role,omitempty" toml:"role"`
}

// StatType is one named statistic of a sport. Types with components are composites,
// every other type is recorded directly.
type StatType struct {
	ID           int64       `json:"id"`
	SportID      int64       `json:"sport_id"`
	Name         string      `json:"name"`
	Abbreviation string      `json:"abbreviation"`
	PointValue   int         `json:"point_value"`
	IsCounter    bool        `json:"is_counter"`
	IsNegative   bool        `json:"is_negative"`
	Kind         Kind        `json:"calculation_kind"`
	RelatedID    *int64      `json:"related_stat_id,omitempty"`
	Related      string      `json:"related_stat,omitempty"`
	Components   []Component `json:"component_stats,omitempty"`
}

func (s StatType) IsBase() bool {
	return len(s.Components) == 0
}

// Anomaly is a composite the engine refuses to compute because its shape does not match
// its kind. The rest of the catalog is unaffected.
type Anomaly struct {
	Abbreviation string `json:"abbreviation"`
	Reason       string `json:"reason"`
}

type percentagePair struct {
	made   string
	other  string
	missed bool
}

// Catalog is a validated, partitioned view of one sport's statistic types.
type Catalog struct {
	types       map[string]StatType
	base        []string
	sums        []string
	percentages []string
	order       []string
	counters    map[string]bool
	pairs       map[string]percentagePair
	anomalies   []Anomaly
	skipped     map[string]bool
}

// NewCatalog validates types and orders composites so that every component is evaluated
// before the composites depending on it. Structural problems (duplicates, unknown
// components, cycles) are errors; shape problems are collected as anomalies.
func NewCatalog(types []StatType) (*Catalog, error) {
	c := &Catalog{
		types:    make(map[string]StatType, len(types)),
		counters: make(map[string]bool),
		pairs:    make(map[string]percentagePair),
		skipped:  make(map[string]bool),
	}

	for _, t := range types {
		if _, exists := c.types[t.Abbreviation]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAbbrev, t.Abbreviation)
		}
		if t.Kind == "" {
			t.Kind = KindNone
		}
		if !t.Kind.valid() {
			return nil, fmt.Errorf("%w: %q on %q", ErrInvalidCalculation, t.Kind, t.Abbreviation)
		}
		c.types[t.Abbreviation] = t
	}

	for _, t := range c.types {
		for _, comp := range t.Components {
			if _, ok := c.types[comp.Abbreviation]; !ok {
				return nil, fmt.Errorf("%w: %q in %q", ErrUnknownComponent, comp.Abbreviation,
					t.Abbreviation)
			}
			if !comp.Role.valid() {
				return nil, fmt.Errorf("%w: %q in %q", ErrInvalidComponentRole, comp.Role,
					t.Abbreviation)
			}
		}
		if t.IsCounter {
			c.counters[t.Abbreviation] = true
		}
	}

	order, err := topoSort(c.types)
	if err != nil {
		return nil, err
	}

	for _, abbr := range order {
		t := c.types[abbr]

		// Components come first in order, so a skipped one is already marked.
		i := slices.IndexFunc(t.Components, func(comp Component) bool {
			return c.skipped[comp.Abbreviation]
		})
		if i != -1 {
			c.anomaly(abbr, fmt.Sprintf("depends on skipped composite %s",
				t.Components[i].Abbreviation))
			continue
		}

		switch {
		case t.IsBase() && t.Kind == KindNone:
			c.base = append(c.base, abbr)
		case t.IsBase():
			c.anomaly(abbr, fmt.Sprintf("%s composite has no components", t.Kind))
		case t.Kind == KindNone:
			c.anomaly(abbr, "components declared on a statistic with no calculation")
		case t.Kind == KindSum:
			c.sums = append(c.sums, abbr)
			c.order = append(c.order, abbr)
		case t.Kind == KindPercentage:
			pair, reason := resolvePair(t)
			if reason != "" {
				c.anomaly(abbr, reason)
				continue
			}
			c.pairs[abbr] = pair
			c.percentages = append(c.percentages, abbr)
			c.order = append(c.order, abbr)
		}
	}

	return c, nil
}

func (c *Catalog) anomaly(abbr, reason string) {
	c.anomalies = append(c.anomalies, Anomaly{Abbreviation: abbr, Reason: reason})
	c.skipped[abbr] = true
}

func resolvePair(t StatType) (percentagePair, string) {
	if len(t.Components) != 2 {
		return percentagePair{}, fmt.Sprintf("percentage needs 2 components, has %d",
			len(t.Components))
	}

	var pair percentagePair
	var made, other int
	for _, comp := range t.Components {
		switch comp.Role {
		case RoleMade:
			made++
			pair.made = comp.Abbreviation
		case RoleAttempted, RoleMissed:
			other++
			pair.other = comp.Abbreviation
			pair.missed = comp.Role == RoleMissed
		}
	}
	if made != 1 || other != 1 {
		return percentagePair{}, "percentage needs one made and one attempted or missed component"
	}

	return pair, ""
}

// topoSort returns every abbreviation with components ahead of their dependents. Ties are
// broken alphabetically.
func topoSort(types map[string]StatType) ([]string, error) {
	indegree := make(map[string]int, len(types))
	dependents := make(map[string][]string, len(types))
	for abbr, t := range types {
		indegree[abbr] = len(t.Components)
		for _, comp := range t.Components {
			dependents[comp.Abbreviation] = append(dependents[comp.Abbreviation], abbr)
		}
	}

	ready := make([]string, 0)
	for abbr, n := range indegree {
		if n == 0 {
			ready = append(ready, abbr)
		}
	}
	slices.Sort(ready)

	order := make([]string, 0, len(types))
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		released := make([]string, 0)
		for _, d := range dependents[next] {
			indegree[d]--
			if indegree[d] == 0 {
				released = append(released, d)
			}
		}
		if len(released) > 0 {
			ready = append(ready, released...)
			slices.Sort(ready)
		}
	}

	if len(order) != len(types) {
		stuck := make([]string, 0)
		for abbr, n := range indegree {
			if n > 0 {
				stuck = append(stuck, abbr)
			}
		}
		slices.Sort(stuck)
		return nil, fmt.Errorf("%w: %v", ErrCatalogCycle, stuck)
	}

	return order, nil
}

// Base returns the directly recorded abbreviations.
func (c *Catalog) Base() []string { return slices.Clone(c.base) }

// Sums returns sum composites in evaluation order.
func (c *Catalog) Sums() []string { return slices.Clone(c.sums) }

// Percentages returns percentage composites in evaluation order.
func (c *Catalog) Percentages() []string { return slices.Clone(c.percentages) }

// Order returns every computable composite in evaluation order.
func (c *Catalog) Order() []string { return slices.Clone(c.order) }

func (c *Catalog) Anomalies() []Anomaly { return slices.Clone(c.anomalies) }

func (c *Catalog) IsCounter(abbr string) bool { return c.counters[abbr] }

func (c *Catalog) Counters() []string {
	out := make([]string, 0, len(c.counters))
	for abbr := range c.counters {
		out = append(out, abbr)
	}
	slices.Sort(out)
	return out
}

func (c *Catalog) Lookup(abbr string) (StatType, bool) {
	t, ok := c.types[abbr]
	return t, ok
}

// Components returns the direct components of a composite, nil for base types.
func (c *Catalog) Components(abbr string) []Component {
	return slices.Clone(c.types[abbr].Components)
}

// RelatedOf returns the paired statistic of abbr when one is configured.
func (c *Catalog) RelatedOf(abbr string) (StatType, bool) {
	t, ok := c.types[abbr]
	if !ok || t.Related == "" {
		return StatType{}, false
	}
	rel, ok := c.types[t.Related]
	return rel, ok
}

func (c *Catalog) isBase(abbr string) bool {
	t, ok := c.types[abbr]
	return ok && t.IsBase() && t.Kind == KindNone
}

// Len is the number of statistic types, including skipped ones.
func (c *Catalog) Len() int { return len(c.types) }

// View is the catalog as exposed over the API.
type View struct {
	StatTypes   []StatType `json:"stat_types"`
	Base        []string   `json:"base"`
	Sums        []string   `json:"sums"`
	Percentages []string   `json:"percentages"`
	Order       []string   `json:"evaluation_order"`
	Counters    []string   `json:"counters"`
	Anomalies   []Anomaly  `json:"anomalies"`
}

func (c *Catalog) View() View {
	types := make([]StatType, 0, len(c.types))
	for _, t := range c.types {
		types = append(types, t)
	}
	slices.SortFunc(types, func(a, b StatType) int {
		return strings.Compare(a.Abbreviation, b.Abbreviation)
	})

	return View{
		StatTypes:   types,
		Base:        c.Base(),
		Sums:        c.Sums(),
		Percentages: c.Percentages(),
		Order:       c.Order(),
		Counters:    c.Counters(),
		Anomalies:   c.Anomalies(),
	}
}

package stats

import (
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
)

var (
	ErrMissingSport   = errors.New("catalog file must name a sport")
	ErrUnknownRelated = errors.New("related statistic is not defined")
)

// CatalogFile is the on-disk TOML form of a sport's statistic catalog.
//
//	[sport]
//	name = "Basketball"
//
//	[[stat]]
//	name = "Field Goal Percentage"
//	abbreviation = "FG_PC"
//	calculation = "percentage"
//	components = [
//	  { abbreviation = "FG_MA", role = "made" },
//	  { abbreviation = "FG_AT", role = "attempted" },
//	]
type CatalogFile struct {
	Sport SportDef  `toml:"sport"`
	Stats []StatDef `toml:"stat"`
}

type SportDef struct {
	Name         string `toml:"name"`
	ScoringStyle string `toml:"scoring_style"`
}

type StatDef struct {
	Name         string      `toml:"name"`
	Abbreviation string      `toml:"abbreviation"`
	PointValue   int         `toml:"point_value"`
	IsCounter    bool        `toml:"is_counter"`
	IsNegative   bool        `toml:"is_negative"`
	Calculation  Kind        `toml:"calculation"`
	Related      string      `toml:"related"`
	Components   []Component `toml:"components"`
}

// DecodeCatalogFile reads and validates a TOML catalog. The returned file is guaranteed to
// build into a Catalog.
func DecodeCatalogFile(r io.Reader) (*CatalogFile, error) {
	var f CatalogFile

	decoder := toml.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&f); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return nil, fmt.Errorf("catalog file: %s", strictErr.String())
		}
		return nil, fmt.Errorf("catalog file: %w", err)
	}

	if f.Sport.Name == "" {
		return nil, ErrMissingSport
	}
	if f.Sport.ScoringStyle == "" {
		f.Sport.ScoringStyle = "points"
	}

	if _, err := f.Catalog(); err != nil {
		return nil, err
	}

	return &f, nil
}

// StatTypes converts the definitions to StatTypes without IDs.
func (f *CatalogFile) StatTypes() []StatType {
	types := make([]StatType, 0, len(f.Stats))
	for _, d := range f.Stats {
		kind := d.Calculation
		if kind == "" {
			kind = KindNone
		}
		name := d.Name
		if name == "" {
			name = d.Abbreviation
		}
		types = append(types, StatType{
			Name:         name,
			Abbreviation: d.Abbreviation,
			PointValue:   d.PointValue,
			IsCounter:    d.IsCounter,
			IsNegative:   d.IsNegative,
			Kind:         kind,
			Related:      d.Related,
			Components:   d.Components,
		})
	}
	return types
}

func (f *CatalogFile) Catalog() (*Catalog, error) {
	defined := make(map[string]bool, len(f.Stats))
	for _, d := range f.Stats {
		defined[d.Abbreviation] = true
	}
	for _, d := range f.Stats {
		if d.Related != "" && !defined[d.Related] {
			return nil, fmt.Errorf("%w: %q on %q", ErrUnknownRelated, d.Related, d.Abbreviation)
		}
	}

	return NewCatalog(f.StatTypes())
}

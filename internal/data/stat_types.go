package data

import (
	"LeagueStatsApi/internal/stats"
	"context"
	"database/sql"
	"time"
)

type StatTypeModel struct {
	db *sql.DB
}

const statTypeColumns = `st.id, st.sport_id, st.name, st.abbreviation, st.point_value,
	st.is_counter, st.is_negative, st.calculation, st.related_stat_id,
	COALESCE(r.abbreviation, '')`

const statTypeJoins = `
	FROM stat_types st
	LEFT JOIN stat_types r ON r.id = st.related_stat_id`

type componentRow struct {
	statTypeID int64
	stats.Component
}

// ListBySport returns a sport's full catalog with component relations attached. A sport
// without stat types yields an empty slice.
func (m *StatTypeModel) ListBySport(ctx context.Context, sportID int64) ([]stats.StatType,
	error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	stmt := `SELECT ` + statTypeColumns + statTypeJoins + `
		WHERE st.sport_id = $1
		ORDER BY st.abbreviation`

	rows, err := m.db.QueryContext(ctx, stmt, sportID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	types := make([]stats.StatType, 0)
	for rows.Next() {
		st, err := scanStatType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, *st)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	compStmt := `
		SELECT sc.stat_type_id, c.abbreviation, sc.role
		FROM stat_type_components sc
		INNER JOIN stat_types st ON st.id = sc.stat_type_id
		INNER JOIN stat_types c ON c.id = sc.component_id
		WHERE st.sport_id = $1
		ORDER BY sc.stat_type_id, sc.position, c.abbreviation`

	comps, err := listComponents(ctx, m.db, compStmt, sportID)
	if err != nil {
		return nil, err
	}

	return attachComponents(types, comps), nil
}

// Get returns one stat type with its components.
func (m *StatTypeModel) Get(ctx context.Context, id int64) (*stats.StatType, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return getStatType(ctx, m.db, id)
}

func getStatType(ctx context.Context, q queryer, id int64) (*stats.StatType, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	stmt := `SELECT ` + statTypeColumns + statTypeJoins + ` WHERE st.id = $1`

	rows, err := q.QueryContext(ctx, stmt, id)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrRecordNotFound
	}
	st, err := scanStatType(rows)
	if err != nil {
		return nil, err
	}
	rows.Close()

	compStmt := `
		SELECT sc.stat_type_id, c.abbreviation, sc.role
		FROM stat_type_components sc
		INNER JOIN stat_types c ON c.id = sc.component_id
		WHERE sc.stat_type_id = $1
		ORDER BY sc.position, c.abbreviation`

	comps, err := listComponents(ctx, q, compStmt, id)
	if err != nil {
		return nil, err
	}

	types := attachComponents([]stats.StatType{*st}, comps)
	return &types[0], nil
}

func scanStatType(rows *sql.Rows) (*stats.StatType, error) {
	var st stats.StatType
	var relatedID sql.NullInt64
	err := rows.Scan(
		&st.ID,
		&st.SportID,
		&st.Name,
		&st.Abbreviation,
		&st.PointValue,
		&st.IsCounter,
		&st.IsNegative,
		&st.Kind,
		&relatedID,
		&st.Related,
	)
	if err != nil {
		return nil, err
	}
	if relatedID.Valid {
		st.RelatedID = &relatedID.Int64
	}

	return &st, nil
}

func listComponents(ctx context.Context, q queryer, stmt string, arg int64) ([]componentRow,
	error) {
	rows, err := q.QueryContext(ctx, stmt, arg)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	comps := make([]componentRow, 0)
	for rows.Next() {
		var c componentRow
		if err := rows.Scan(&c.statTypeID, &c.Abbreviation, &c.Role); err != nil {
			return nil, err
		}
		comps = append(comps, c)
	}

	return comps, rows.Err()
}

func attachComponents(types []stats.StatType, comps []componentRow) []stats.StatType {
	index := make(map[int64]int, len(types))
	for i, t := range types {
		index[t.ID] = i
	}
	for _, c := range comps {
		if i, ok := index[c.statTypeID]; ok {
			types[i].Components = append(types[i].Components, c.Component)
		}
	}

	return types
}

// ReplaceCatalog upserts a sport and every stat type of f in one transaction. Component
// relations and related links of the listed types are rewritten. Types missing from f are
// left untouched because recorded events may still reference them.
func (m *StatTypeModel) ReplaceCatalog(ctx context.Context, f *stats.CatalogFile) (int64,
	error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, classify(err)
	}

	var sportID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO sports (name, scoring_style)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET scoring_style = EXCLUDED.scoring_style
		RETURNING id`, f.Sport.Name, f.Sport.ScoringStyle).Scan(&sportID)
	if err != nil {
		return 0, rollback(tx, classify(err))
	}

	types := f.StatTypes()
	ids := make(map[string]int64, len(types))

	upsertStmt := `
		INSERT INTO stat_types (sport_id, name, abbreviation, point_value, is_counter,
			is_negative, calculation, related_stat_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL)
		ON CONFLICT (sport_id, abbreviation) DO UPDATE SET
			name = EXCLUDED.name,
			point_value = EXCLUDED.point_value,
			is_counter = EXCLUDED.is_counter,
			is_negative = EXCLUDED.is_negative,
			calculation = EXCLUDED.calculation,
			related_stat_id = NULL
		RETURNING id`

	for _, t := range types {
		var id int64
		err := tx.QueryRowContext(ctx, upsertStmt, sportID, t.Name, t.Abbreviation,
			t.PointValue, t.IsCounter, t.IsNegative, t.Kind).Scan(&id)
		if err != nil {
			return 0, rollback(tx, classify(err))
		}
		ids[t.Abbreviation] = id
	}

	for _, t := range types {
		id := ids[t.Abbreviation]

		_, err := tx.ExecContext(ctx, `DELETE FROM stat_type_components WHERE stat_type_id = $1`,
			id)
		if err != nil {
			return 0, rollback(tx, classify(err))
		}

		for pos, c := range t.Components {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO stat_type_components (stat_type_id, component_id, role, position)
				VALUES ($1, $2, $3, $4)`, id, ids[c.Abbreviation], c.Role, pos)
			if err != nil {
				return 0, rollback(tx, classify(err))
			}
		}

		if t.Related != "" {
			_, err := tx.ExecContext(ctx, `UPDATE stat_types SET related_stat_id = $1 WHERE id = $2`,
				ids[t.Related], id)
			if err != nil {
				return 0, rollback(tx, classify(err))
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, classify(err)
	}

	return sportID, nil
}

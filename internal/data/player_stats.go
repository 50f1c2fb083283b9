package data

import (
	"LeagueStatsApi/internal/validator"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PlayerStat is one recorded occurrence of a statistic. Abbreviation and TeamID are
// resolved from the stat type and the player's current team when read.
type PlayerStat struct {
	ID           int64     `json:"id"`
	PlayerID     int64     `json:"player_id"`
	GameID       int64     `json:"game_id"`
	StatTypeID   int64     `json:"stat_type_id"`
	Period       int       `json:"period"`
	CreatedAt    time.Time `json:"created_at"`
	Abbreviation string    `json:"abbreviation,omitempty"`
	TeamID       int64     `json:"-"`
}

type PlayerStatsFilter struct {
	Filters
	GameID   int64
	PlayerID int64
	Period   int
}

func ValidatePlayerStatsFilter(v *validator.Validator, f PlayerStatsFilter) {
	ValidateFilters(v, f.Filters)
	v.Check(f.GameID >= 0, "game", "must be a positive integer")
	v.Check(f.PlayerID >= 0, "player", "must be a positive integer")
	v.Check(f.Period >= 0, "period", "must be a positive integer")
}

type PlayerStatModel struct {
	db *sql.DB
}

const playerStatColumns = `ps.id, ps.player_id, ps.game_id, ps.stat_type_id, ps.period,
	ps.created_at, st.abbreviation, COALESCE(p.team_id, 0)`

const playerStatJoins = `
	FROM player_stats ps
	INNER JOIN stat_types st ON st.id = ps.stat_type_id
	INNER JOIN players p ON p.id = ps.player_id`

func (m *PlayerStatModel) Get(ctx context.Context, id int64) (*PlayerStat, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	stmt := `SELECT ` + playerStatColumns + playerStatJoins + ` WHERE ps.id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var ps PlayerStat
	err := m.db.QueryRowContext(ctx, stmt, id).Scan(
		&ps.ID,
		&ps.PlayerID,
		&ps.GameID,
		&ps.StatTypeID,
		&ps.Period,
		&ps.CreatedAt,
		&ps.Abbreviation,
		&ps.TeamID,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, classify(err)
		}
	}

	return &ps, nil
}

// GetAll lists recorded events matching f. Zero-valued filter fields match everything.
func (m *PlayerStatModel) GetAll(ctx context.Context, f PlayerStatsFilter) ([]*PlayerStat,
	Metadata, error) {
	stmt := fmt.Sprintf(`
		SELECT count(*) OVER(), `+playerStatColumns+playerStatJoins+`
		WHERE ($1 = 0 OR ps.game_id = $1)
		AND ($2 = 0 OR ps.player_id = $2)
		AND ($3 = 0 OR ps.period = $3)
		ORDER BY ps.%s %s, ps.id DESC
		LIMIT $4 OFFSET $5`, f.Filters.sortColumn(), f.Filters.sortDirection())

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	args := []any{f.GameID, f.PlayerID, f.Period, f.Filters.limit(), f.Filters.offset()}

	rows, err := m.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, Metadata{}, classify(err)
	}
	defer rows.Close()

	totalRecords := 0
	events := make([]*PlayerStat, 0)
	for rows.Next() {
		var ps PlayerStat
		err := rows.Scan(
			&totalRecords,
			&ps.ID,
			&ps.PlayerID,
			&ps.GameID,
			&ps.StatTypeID,
			&ps.Period,
			&ps.CreatedAt,
			&ps.Abbreviation,
			&ps.TeamID,
		)
		if err != nil {
			return nil, Metadata{}, err
		}
		events = append(events, &ps)
	}
	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	return events, calculateMetadata(totalRecords, f.Page, f.PageSize), nil
}

// ListForGame returns every event of a game in recording order.
func (m *PlayerStatModel) ListForGame(ctx context.Context, gameID int64) ([]*PlayerStat, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return listGameEvents(ctx, m.db, gameID)
}

func listGameEvents(ctx context.Context, q queryer, gameID int64) ([]*PlayerStat, error) {
	stmt := `SELECT ` + playerStatColumns + playerStatJoins + `
		WHERE ps.game_id = $1
		ORDER BY ps.id`

	rows, err := q.QueryContext(ctx, stmt, gameID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	events := make([]*PlayerStat, 0)
	for rows.Next() {
		var ps PlayerStat
		err := rows.Scan(
			&ps.ID,
			&ps.PlayerID,
			&ps.GameID,
			&ps.StatTypeID,
			&ps.Period,
			&ps.CreatedAt,
			&ps.Abbreviation,
			&ps.TeamID,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, &ps)
	}

	return events, rows.Err()
}

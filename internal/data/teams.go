package data

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Team struct {
	ID        int64     `json:"id"`
	SportID   int64     `json:"sport_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"`
	Version   int32     `json:"-"`
}

// Record is a team's win/loss tally over completed games. Ties count as neither.
type Record struct {
	TeamID int64 `json:"team_id"`
	Wins   int   `json:"wins"`
	Losses int   `json:"losses"`
}

type TeamModel struct {
	db *sql.DB
}

func (m *TeamModel) Get(ctx context.Context, id int64) (*Team, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	stmt := `
		SELECT id, sport_id, name, created_at, version
		FROM teams
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var team Team
	err := m.db.QueryRowContext(ctx, stmt, id).Scan(
		&team.ID,
		&team.SportID,
		&team.Name,
		&team.CreatedAt,
		&team.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, classify(err)
		}
	}

	return &team, nil
}

func (m *TeamModel) Record(ctx context.Context, teamID int64) (*Record, error) {
	if _, err := m.Get(ctx, teamID); err != nil {
		return nil, err
	}

	stmt := `
		SELECT
			count(*) FILTER (WHERE
				(home_team_id = $1 AND home_team_score > away_team_score) OR
				(away_team_id = $1 AND away_team_score > home_team_score)),
			count(*) FILTER (WHERE
				(home_team_id = $1 AND home_team_score < away_team_score) OR
				(away_team_id = $1 AND away_team_score < home_team_score))
		FROM games
		WHERE status = $2 AND (home_team_id = $1 OR away_team_id = $1)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	record := Record{TeamID: teamID}
	err := m.db.QueryRowContext(ctx, stmt, teamID, GameCompleted).Scan(&record.Wins,
		&record.Losses)
	if err != nil {
		return nil, classify(err)
	}

	return &record, nil
}

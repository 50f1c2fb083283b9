package data

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Sport struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ScoringStyle string `json:"scoring_style"`
}

type SportModel struct {
	db *sql.DB
}

func (m *SportModel) Get(ctx context.Context, id int64) (*Sport, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	stmt := `SELECT id, name, scoring_style FROM sports WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var sport Sport
	err := m.db.QueryRowContext(ctx, stmt, id).Scan(&sport.ID, &sport.Name, &sport.ScoringStyle)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, classify(err)
		}
	}

	return &sport, nil
}

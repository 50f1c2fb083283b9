package data

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Player struct {
	ID           int64     `json:"id"`
	TeamID       int64     `json:"team_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	JerseyNumber *int      `json:"jersey_number"`
	IsActive     bool      `json:"active"`
	CreatedAt    time.Time `json:"-"`
	Version      int32     `json:"-"`
}

func (p *Player) FullName() string {
	return p.FirstName + " " + p.LastName
}

type PlayerModel struct {
	db *sql.DB
}

const playerColumns = `id, COALESCE(team_id, 0), first_name, last_name, jersey_number, is_active,
	created_at, version`

func (m *PlayerModel) Get(ctx context.Context, id int64) (*Player, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return getPlayer(ctx, m.db, id)
}

// ListForGame returns the current rosters of both teams of game, home team first.
func (m *PlayerModel) ListForGame(ctx context.Context, game *Game) ([]*Player, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return listRoster(ctx, m.db, game)
}

func getPlayer(ctx context.Context, q queryer, id int64) (*Player, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	stmt := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	var player Player
	err := q.QueryRowContext(ctx, stmt, id).Scan(
		&player.ID,
		&player.TeamID,
		&player.FirstName,
		&player.LastName,
		&player.JerseyNumber,
		&player.IsActive,
		&player.CreatedAt,
		&player.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, classify(err)
		}
	}

	return &player, nil
}

func listRoster(ctx context.Context, q queryer, game *Game) ([]*Player, error) {
	stmt := `SELECT ` + playerColumns + `
		FROM players
		WHERE team_id = $1 OR team_id = $2
		ORDER BY team_id = $1 DESC, id`

	rows, err := q.QueryContext(ctx, stmt, game.HomeTeamID, game.AwayTeamID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	players := make([]*Player, 0)
	for rows.Next() {
		var player Player
		err := rows.Scan(
			&player.ID,
			&player.TeamID,
			&player.FirstName,
			&player.LastName,
			&player.JerseyNumber,
			&player.IsActive,
			&player.CreatedAt,
			&player.Version,
		)
		if err != nil {
			return nil, err
		}
		players = append(players, &player)
	}

	return players, rows.Err()
}

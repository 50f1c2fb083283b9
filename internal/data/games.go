package data

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type GameStatus string

const (
	GameScheduled  GameStatus = "scheduled"
	GameInProgress GameStatus = "in_progress"
	GameCompleted  GameStatus = "completed"
	GamePostponed  GameStatus = "postponed"
	GameCanceled   GameStatus = "canceled"
)

type Game struct {
	ID            int64      `json:"id"`
	SportID       int64      `json:"sport_id"`
	HomeTeamID    int64      `json:"home_team_id"`
	AwayTeamID    int64      `json:"away_team_id"`
	DateTime      time.Time  `json:"date_time"`
	Location      string     `json:"location"`
	Status        GameStatus `json:"status"`
	CurrentPeriod int        `json:"current_period"`
	HomeTeamScore int        `json:"home_team_score"`
	AwayTeamScore int        `json:"away_team_score"`
	CreatedAt     time.Time  `json:"-"`
	Version       int32      `json:"-"`
}

// HasTeam reports whether teamID is one of the game's two participants.
func (g *Game) HasTeam(teamID int64) bool {
	return teamID == g.HomeTeamID || teamID == g.AwayTeamID
}

type GameModel struct {
	db *sql.DB
}

const gameColumns = `id, sport_id, home_team_id, away_team_id, date_time, location, status,
	current_period, home_team_score, away_team_score, created_at, version`

func scanGame(row *sql.Row) (*Game, error) {
	var game Game
	err := row.Scan(
		&game.ID,
		&game.SportID,
		&game.HomeTeamID,
		&game.AwayTeamID,
		&game.DateTime,
		&game.Location,
		&game.Status,
		&game.CurrentPeriod,
		&game.HomeTeamScore,
		&game.AwayTeamScore,
		&game.CreatedAt,
		&game.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, classify(err)
		}
	}

	return &game, nil
}

func (m *GameModel) Get(ctx context.Context, id int64) (*Game, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	stmt := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanGame(m.db.QueryRowContext(ctx, stmt, id))
}

// InTx runs fn in a transaction holding the game's row lock. Writers for the same game are
// serialized for the whole of fn. The transaction commits only if fn returns nil.
func (m *GameModel) InTx(ctx context.Context, gameID int64, fn func(GameTx) error) error {
	if gameID < 1 {
		return ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}

	stmt := `SELECT ` + gameColumns + ` FROM games WHERE id = $1 FOR UPDATE`

	game, err := scanGame(tx.QueryRowContext(ctx, stmt, gameID))
	if err != nil {
		return rollback(tx, err)
	}

	err = fn(&gameTx{ctx: ctx, tx: tx, game: game})
	if err != nil {
		return rollback(tx, err)
	}

	if err = tx.Commit(); err != nil {
		return classify(err)
	}

	return nil
}

func rollback(tx *sql.Tx, err error) error {
	if rollbackErr := tx.Rollback(); rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}
	return err
}

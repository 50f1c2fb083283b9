package data

import (
	"LeagueStatsApi/internal/stats"
	"context"
	"database/sql"
	"errors"
)

// GameTx is the set of reads and writes available while a game's row lock is held.
type GameTx interface {
	Game() *Game
	Player(id int64) (*Player, error)
	StatType(id int64) (*stats.StatType, error)
	Roster() ([]*Player, error)
	Events() ([]*PlayerStat, error)
	InsertPlayerStat(ps *PlayerStat) error
	EnsurePlayerStat(ps *PlayerStat) (bool, error)
	DeletePlayerStat(id int64) error
	UpdateScores(home, away int) error
	UpdateState(status GameStatus, period int) error
}

type gameTx struct {
	ctx  context.Context
	tx   *sql.Tx
	game *Game
}

func (t *gameTx) Game() *Game {
	return t.game
}

func (t *gameTx) Player(id int64) (*Player, error) {
	return getPlayer(t.ctx, t.tx, id)
}

func (t *gameTx) StatType(id int64) (*stats.StatType, error) {
	return getStatType(t.ctx, t.tx, id)
}

func (t *gameTx) Roster() ([]*Player, error) {
	return listRoster(t.ctx, t.tx, t.game)
}

func (t *gameTx) Events() ([]*PlayerStat, error) {
	return listGameEvents(t.ctx, t.tx, t.game.ID)
}

func (t *gameTx) InsertPlayerStat(ps *PlayerStat) error {
	stmt := `
		INSERT INTO player_stats (player_id, game_id, stat_type_id, period)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	ps.GameID = t.game.ID
	args := []any{ps.PlayerID, ps.GameID, ps.StatTypeID, ps.Period}

	err := t.tx.QueryRowContext(t.ctx, stmt, args...).Scan(&ps.ID, &ps.CreatedAt)
	if err != nil {
		return classify(err)
	}

	return nil
}

// EnsurePlayerStat inserts ps unless an event with the same player, stat type and period
// already exists for the game. It reports whether a row was created.
func (t *gameTx) EnsurePlayerStat(ps *PlayerStat) (bool, error) {
	stmt := `
		INSERT INTO player_stats (player_id, game_id, stat_type_id, period)
		SELECT $1::bigint, $2::bigint, $3::bigint, $4::int
		WHERE NOT EXISTS (
			SELECT 1 FROM player_stats
			WHERE player_id = $1 AND game_id = $2 AND stat_type_id = $3 AND period = $4)
		RETURNING id, created_at`

	ps.GameID = t.game.ID
	args := []any{ps.PlayerID, ps.GameID, ps.StatTypeID, ps.Period}

	err := t.tx.QueryRowContext(t.ctx, stmt, args...).Scan(&ps.ID, &ps.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return false, nil
		default:
			return false, classify(err)
		}
	}

	return true, nil
}

func (t *gameTx) DeletePlayerStat(id int64) error {
	stmt := `DELETE FROM player_stats WHERE id = $1 AND game_id = $2`

	result, err := t.tx.ExecContext(t.ctx, stmt, id, t.game.ID)
	if err != nil {
		return classify(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (t *gameTx) UpdateScores(home, away int) error {
	stmt := `
		UPDATE games
		SET home_team_score = $1, away_team_score = $2, version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version`

	args := []any{home, away, t.game.ID, t.game.Version}

	err := t.tx.QueryRowContext(t.ctx, stmt, args...).Scan(&t.game.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return classify(err)
		}
	}

	t.game.HomeTeamScore = home
	t.game.AwayTeamScore = away
	return nil
}

func (t *gameTx) UpdateState(status GameStatus, period int) error {
	stmt := `
		UPDATE games
		SET status = $1, current_period = $2, version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version`

	args := []any{status, period, t.game.ID, t.game.Version}

	err := t.tx.QueryRowContext(t.ctx, stmt, args...).Scan(&t.game.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return classify(err)
		}
	}

	t.game.Status = status
	t.game.CurrentPeriod = period
	return nil
}

package data

import (
	"context"
	"database/sql"
)

type Models struct {
	Games       GameModel
	Players     PlayerModel
	Teams       TeamModel
	Sports      SportModel
	StatTypes   StatTypeModel
	PlayerStats PlayerStatModel
}

func NewModels(initDb *sql.DB) Models {
	return Models{
		Games:       GameModel{db: initDb},
		Players:     PlayerModel{db: initDb},
		Teams:       TeamModel{db: initDb},
		Sports:      SportModel{db: initDb},
		StatTypes:   StatTypeModel{db: initDb},
		PlayerStats: PlayerStatModel{db: initDb},
	}
}

// queryer is satisfied by both *sql.DB and *sql.Tx so read helpers can run inside or
// outside a game transaction.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

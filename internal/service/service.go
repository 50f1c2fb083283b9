package service

import (
	"LeagueStatsApi/internal/data"
	"LeagueStatsApi/internal/stats"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrInvalidState is returned when an operation is not allowed in the game's or player's
// current state. It is always wrapped with a detail message.
var ErrInvalidState = errors.New("invalid state")

func invalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

type GameStore interface {
	Get(ctx context.Context, id int64) (*data.Game, error)
	InTx(ctx context.Context, gameID int64, fn func(data.GameTx) error) error
}

type RosterStore interface {
	ListForGame(ctx context.Context, game *data.Game) ([]*data.Player, error)
}

type TeamStore interface {
	Get(ctx context.Context, id int64) (*data.Team, error)
}

type EventStore interface {
	Get(ctx context.Context, id int64) (*data.PlayerStat, error)
	ListForGame(ctx context.Context, gameID int64) ([]*data.PlayerStat, error)
}

type CatalogSource interface {
	Catalog(ctx context.Context, sportID int64) (*stats.Catalog, error)
}

type Deps struct {
	Games    GameStore
	Rosters  RosterStore
	Teams    TeamStore
	Events   EventStore
	Catalogs CatalogSource
	Logger   zerolog.Logger
}

type Services struct {
	Recording *RecordingService
	Scores    *ScoreService
	Summary   *SummaryService
	Games     *GameService
}

func New(d Deps) Services {
	scores := &ScoreService{games: d.Games, catalogs: d.Catalogs,
		logger: d.Logger.With().Str("service", "scores").Logger()}

	return Services{
		Recording: &RecordingService{games: d.Games, events: d.Events, scores: scores,
			logger: d.Logger.With().Str("service", "recording").Logger()},
		Scores: scores,
		Summary: &SummaryService{games: d.Games, rosters: d.Rosters, teams: d.Teams,
			events: d.Events, catalogs: d.Catalogs,
			logger: d.Logger.With().Str("service", "summary").Logger()},
		Games: &GameService{games: d.Games, scores: scores,
			logger: d.Logger.With().Str("service", "games").Logger()},
	}
}

// retryOnce runs fn again when the first attempt lost a serialization race.
func retryOnce(logger zerolog.Logger, op string, fn func() error) error {
	err := fn()
	if !errors.Is(err, data.ErrTxConflict) {
		return err
	}

	logger.Warn().Err(err).Str("op", op).Msg("transaction conflict, retrying")
	return fn()
}

package service

import (
	"LeagueStatsApi/internal/data"
	"context"
	"slices"

	"github.com/rs/zerolog"
)

type GameService struct {
	games  GameStore
	scores *ScoreService
	logger zerolog.Logger
}

// transition moves a game between statuses under its row lock. from lists the statuses
// the move is allowed from; apply may do extra work before the state is written.
func (s *GameService) transition(ctx context.Context, gameID int64, op string,
	from []data.GameStatus, to data.GameStatus,
	apply func(tx data.GameTx) (period int, err error)) (*data.Game, error) {
	var game *data.Game

	err := retryOnce(s.logger, op, func() error {
		return s.games.InTx(ctx, gameID, func(tx data.GameTx) error {
			g := tx.Game()
			if !slices.Contains(from, g.Status) {
				return invalidState("cannot %s a game that is %s", op, g.Status)
			}

			period, err := apply(tx)
			if err != nil {
				return err
			}
			if err := tx.UpdateState(to, period); err != nil {
				return err
			}

			game = tx.Game()
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("game_id", game.ID).
		Str("status", string(game.Status)).
		Int("current_period", game.CurrentPeriod).
		Msg(op)

	return game, nil
}

// Start puts a scheduled or postponed game in progress, entering period one if no period
// has been played yet.
func (s *GameService) Start(ctx context.Context, gameID int64) (*data.Game, error) {
	return s.transition(ctx, gameID, "start",
		[]data.GameStatus{data.GameScheduled, data.GamePostponed}, data.GameInProgress,
		func(tx data.GameTx) (int, error) {
			return max(tx.Game().CurrentPeriod, 1), nil
		})
}

// Complete writes the final scores and closes the game in the same transaction.
func (s *GameService) Complete(ctx context.Context, gameID int64) (*data.Game, error) {
	return s.transition(ctx, gameID, "complete",
		[]data.GameStatus{data.GameInProgress}, data.GameCompleted,
		func(tx data.GameTx) (int, error) {
			if err := s.scores.recalculate(ctx, tx); err != nil {
				return 0, err
			}
			return tx.Game().CurrentPeriod, nil
		})
}

func (s *GameService) Postpone(ctx context.Context, gameID int64) (*data.Game, error) {
	return s.transition(ctx, gameID, "postpone",
		[]data.GameStatus{data.GameScheduled, data.GameInProgress}, data.GamePostponed,
		func(tx data.GameTx) (int, error) {
			return tx.Game().CurrentPeriod, nil
		})
}

func (s *GameService) AdvancePeriod(ctx context.Context, gameID int64) (*data.Game, error) {
	return s.transition(ctx, gameID, "advance period",
		[]data.GameStatus{data.GameInProgress}, data.GameInProgress,
		func(tx data.GameTx) (int, error) {
			return tx.Game().CurrentPeriod + 1, nil
		})
}

func (s *GameService) Get(ctx context.Context, gameID int64) (*data.Game, error) {
	return s.games.Get(ctx, gameID)
}

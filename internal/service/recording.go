package service

import (
	"LeagueStatsApi/internal/data"
	"LeagueStatsApi/internal/validator"
	"context"
	"errors"

	"github.com/rs/zerolog"
)

type RecordInput struct {
	PlayerID   int64 `json:"player"`
	GameID     int64 `json:"game"`
	StatTypeID int64 `json:"stat_type"`
}

func ValidateRecordInput(v *validator.Validator, in RecordInput) {
	v.Check(in.PlayerID > 0, "player", "must be provided")
	v.Check(in.GameID > 0, "game", "must be provided")
	v.Check(in.StatTypeID > 0, "stat_type", "must be provided")
}

// RecordResult is what one recording wrote. Companion is set only when a related event
// was created alongside the recorded one.
type RecordResult struct {
	Event     *data.PlayerStat `json:"player_stat"`
	Companion *data.PlayerStat `json:"companion,omitempty"`
	Game      *data.Game       `json:"game"`
}

type RecordingService struct {
	games  GameStore
	events EventStore
	scores *ScoreService
	logger zerolog.Logger
}

// Record stores one event for the game's current period, adds the companion event of a
// related counter when it is missing, and recalculates scores. All of it happens under the
// game's row lock in a single transaction.
func (s *RecordingService) Record(ctx context.Context, in RecordInput) (*RecordResult, error) {
	var result *RecordResult

	err := retryOnce(s.logger, "record", func() error {
		return s.games.InTx(ctx, in.GameID, func(tx data.GameTx) error {
			res, err := s.record(ctx, tx, in)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("game_id", in.GameID).
		Int64("player_id", in.PlayerID).
		Str("stat", result.Event.Abbreviation).
		Int("period", result.Event.Period).
		Bool("companion", result.Companion != nil).
		Msg("stat recorded")

	return result, nil
}

func (s *RecordingService) record(ctx context.Context, tx data.GameTx,
	in RecordInput) (*RecordResult, error) {
	game := tx.Game()
	if game.Status != data.GameInProgress {
		return nil, invalidState("stats can only be recorded while the game is in progress "+
			"(status %s)", game.Status)
	}
	if game.CurrentPeriod < 1 {
		return nil, invalidState("game has not started its first period")
	}

	verr := data.ModelValidationErr{Errors: make(map[string]string)}

	player, err := tx.Player(in.PlayerID)
	switch {
	case errors.Is(err, data.ErrRecordNotFound):
		verr.AddError("player", "does not exist")
	case err != nil:
		return nil, err
	case !game.HasTeam(player.TeamID):
		verr.AddError("player", "must play for one of the game's teams")
	}

	st, err := tx.StatType(in.StatTypeID)
	switch {
	case errors.Is(err, data.ErrRecordNotFound):
		verr.AddError("stat_type", "does not exist")
	case err != nil:
		return nil, err
	case st.SportID != game.SportID:
		verr.AddError("stat_type", "must belong to the game's sport")
	case !st.IsBase():
		verr.AddError("stat_type", "must be a recordable base statistic")
	}

	if !verr.Valid() {
		return nil, verr
	}
	if !player.IsActive {
		return nil, invalidState("player %d is not active", player.ID)
	}

	event := &data.PlayerStat{
		PlayerID:     player.ID,
		StatTypeID:   st.ID,
		Period:       game.CurrentPeriod,
		Abbreviation: st.Abbreviation,
		TeamID:       player.TeamID,
	}
	if err := tx.InsertPlayerStat(event); err != nil {
		return nil, err
	}

	result := &RecordResult{Event: event}

	if st.IsCounter && st.RelatedID != nil {
		companion := &data.PlayerStat{
			PlayerID:     player.ID,
			StatTypeID:   *st.RelatedID,
			Period:       game.CurrentPeriod,
			Abbreviation: st.Related,
			TeamID:       player.TeamID,
		}
		created, err := tx.EnsurePlayerStat(companion)
		if err != nil {
			return nil, err
		}
		if created {
			result.Companion = companion
		}
	}

	if err := s.scores.recalculate(ctx, tx); err != nil {
		return nil, err
	}

	result.Game = tx.Game()
	return result, nil
}

// Undo deletes a recorded event. Scores are recalculated only while the game is in
// progress, so a finished game keeps its final score.
func (s *RecordingService) Undo(ctx context.Context, eventID int64) (*data.Game, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var game *data.Game
	err = retryOnce(s.logger, "undo", func() error {
		return s.games.InTx(ctx, event.GameID, func(tx data.GameTx) error {
			if err := tx.DeletePlayerStat(eventID); err != nil {
				return err
			}

			if tx.Game().Status == data.GameInProgress {
				if err := s.scores.recalculate(ctx, tx); err != nil {
					return err
				}
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
		Int64("player_stat_id", eventID).
		Str("status", string(game.Status)).
		Msg("stat removed")

	return game, nil
}

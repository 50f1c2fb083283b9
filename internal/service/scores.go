package service

import (
	"LeagueStatsApi/internal/data"
	"LeagueStatsApi/internal/stats"
	"context"

	"github.com/rs/zerolog"
)

type ScoreService struct {
	games    GameStore
	catalogs CatalogSource
	logger   zerolog.Logger
}

// Recalculate rebuilds both team scores from the game's events and persists them. Only an
// in-progress game can be recalculated.
func (s *ScoreService) Recalculate(ctx context.Context, gameID int64) (*data.Game, error) {
	var game *data.Game

	err := retryOnce(s.logger, "recalculate", func() error {
		return s.games.InTx(ctx, gameID, func(tx data.GameTx) error {
			g := tx.Game()
			if g.Status != data.GameInProgress {
				return invalidState("scores can only be recalculated while the game is in "+
					"progress (status %s)", g.Status)
			}

			if err := s.recalculate(ctx, tx); err != nil {
				return err
			}

			game = tx.Game()
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return game, nil
}

// recalculate writes fresh scores inside an already locked game transaction.
func (s *ScoreService) recalculate(ctx context.Context, tx data.GameTx) error {
	game := tx.Game()

	cat, err := s.catalogs.Catalog(ctx, game.SportID)
	if err != nil {
		return err
	}

	events, err := tx.Events()
	if err != nil {
		return err
	}

	home, away := teamPoints(cat, game, events)
	if err := tx.UpdateScores(home, away); err != nil {
		return err
	}

	s.logger.Debug().
		Int64("game_id", game.ID).
		Int("home_team_score", home).
		Int("away_team_score", away).
		Msg("scores recalculated")

	return nil
}

func teamPoints(cat *stats.Catalog, game *data.Game, events []*data.PlayerStat) (int, int) {
	points := stats.Points(stats.Input{
		Catalog:  cat,
		Periods:  game.CurrentPeriod,
		Subjects: []int64{game.HomeTeamID, game.AwayTeamID},
		Events:   teamEvents(events),
	})

	return points[game.HomeTeamID], points[game.AwayTeamID]
}

func teamEvents(events []*data.PlayerStat) []stats.Event {
	out := make([]stats.Event, 0, len(events))
	for _, e := range events {
		out = append(out, stats.Event{Subject: e.TeamID, Abbreviation: e.Abbreviation,
			Period: e.Period})
	}
	return out
}

func playerEvents(events []*data.PlayerStat) []stats.Event {
	out := make([]stats.Event, 0, len(events))
	for _, e := range events {
		out = append(out, stats.Event{Subject: e.PlayerID, Abbreviation: e.Abbreviation,
			Period: e.Period})
	}
	return out
}

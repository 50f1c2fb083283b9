package service

import (
	"LeagueStatsApi/internal/data"
	"LeagueStatsApi/internal/stats"
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type TeamFilter string

const (
	TeamAll  TeamFilter = ""
	TeamHome TeamFilter = "home_team"
	TeamAway TeamFilter = "away_team"
)

type PlayerSummary struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	JerseyNumber *int   `json:"jersey_number"`
	TeamID       int64  `json:"team_id"`
	stats.Line
}

type TeamSummary struct {
	TeamID   int64  `json:"team_id"`
	TeamName string `json:"team_name"`
	stats.Line
}

type TeamsSummary struct {
	HomeTeam *TeamSummary `json:"home_team,omitempty"`
	AwayTeam *TeamSummary `json:"away_team,omitempty"`
}

type SummaryService struct {
	games    GameStore
	rosters  RosterStore
	teams    TeamStore
	events   EventStore
	catalogs CatalogSource
	logger   zerolog.Logger
}

type gameSnapshot struct {
	game    *data.Game
	catalog *stats.Catalog
	roster  []*data.Player
	events  []*data.PlayerStat
	home    *data.Team
	away    *data.Team
}

// load reads everything a summary needs concurrently. Teams are fetched only when asked.
func (s *SummaryService) load(ctx context.Context, gameID int64,
	withTeams bool) (*gameSnapshot, error) {
	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	snap := &gameSnapshot{game: game}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		snap.catalog, err = s.catalogs.Catalog(gCtx, game.SportID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.events, err = s.events.ListForGame(gCtx, game.ID)
		return err
	})

	if withTeams {
		g.Go(func() error {
			var err error
			snap.home, err = s.teams.Get(gCtx, game.HomeTeamID)
			return err
		})
		g.Go(func() error {
			var err error
			snap.away, err = s.teams.Get(gCtx, game.AwayTeamID)
			return err
		})
	} else {
		g.Go(func() error {
			var err error
			snap.roster, err = s.rosters.ListForGame(gCtx, game)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, a := range snap.catalog.Anomalies() {
		s.logger.Warn().
			Int64("game_id", game.ID).
			Int64("sport_id", game.SportID).
			Str("stat", a.Abbreviation).
			Str("reason", a.Reason).
			Msg("skipping malformed composite stat")
	}

	return snap, nil
}

func (f TeamFilter) includes(game *data.Game, teamID int64) bool {
	switch f {
	case TeamHome:
		return teamID == game.HomeTeamID
	case TeamAway:
		return teamID == game.AwayTeamID
	default:
		return game.HasTeam(teamID)
	}
}

// Players returns the statline of every rostered player of the game, home team first.
func (s *SummaryService) Players(ctx context.Context, gameID int64,
	filter TeamFilter) ([]PlayerSummary, error) {
	snap, err := s.load(ctx, gameID, false)
	if err != nil {
		return nil, err
	}

	players := make([]*data.Player, 0, len(snap.roster))
	subjects := make([]int64, 0, len(snap.roster))
	for _, p := range snap.roster {
		if filter.includes(snap.game, p.TeamID) {
			players = append(players, p)
			subjects = append(subjects, p.ID)
		}
	}

	lines := stats.Aggregate(stats.Input{
		Catalog:  snap.catalog,
		Periods:  snap.game.CurrentPeriod,
		Subjects: subjects,
		Events:   playerEvents(snap.events),
	})

	summaries := make([]PlayerSummary, 0, len(players))
	for i, p := range players {
		summaries = append(summaries, PlayerSummary{
			ID:           p.ID,
			Name:         p.FullName(),
			JerseyNumber: p.JerseyNumber,
			TeamID:       p.TeamID,
			Line:         lines[i],
		})
	}

	return summaries, nil
}

// Teams returns the home and away team statlines. A filter leaves out the other team.
func (s *SummaryService) Teams(ctx context.Context, gameID int64,
	filter TeamFilter) (*TeamsSummary, error) {
	snap, err := s.load(ctx, gameID, true)
	if err != nil {
		return nil, err
	}

	lines := stats.Aggregate(stats.Input{
		Catalog:  snap.catalog,
		Periods:  snap.game.CurrentPeriod,
		Subjects: []int64{snap.game.HomeTeamID, snap.game.AwayTeamID},
		Events:   teamEvents(snap.events),
	})

	summary := &TeamsSummary{}
	if filter != TeamAway {
		summary.HomeTeam = &TeamSummary{TeamID: snap.home.ID, TeamName: snap.home.Name,
			Line: lines[0]}
	}
	if filter != TeamHome {
		summary.AwayTeam = &TeamSummary{TeamID: snap.away.ID, TeamName: snap.away.Name,
			Line: lines[1]}
	}

	return summary, nil
}

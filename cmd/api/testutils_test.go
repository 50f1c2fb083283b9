package main

import (
	"LeagueStatsApi/internal/data"
	"LeagueStatsApi/internal/service"
	"LeagueStatsApi/internal/stats"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// league is a small in-memory backend for the handlers: one basketball game in progress
// between teams 10 and 20, and one scheduled game.
type league struct {
	mu      sync.Mutex
	games   map[int64]*data.Game
	players map[int64]*data.Player
	types   []stats.StatType
	events  []*data.PlayerStat
	nextID  int64
}

func newLeague() *league {
	return &league{
		games: map[int64]*data.Game{
			1: {ID: 1, SportID: 1, HomeTeamID: 10, AwayTeamID: 20, Status: data.GameInProgress,
				CurrentPeriod: 1},
			2: {ID: 2, SportID: 1, HomeTeamID: 10, AwayTeamID: 20, Status: data.GameScheduled},
		},
		players: map[int64]*data.Player{
			100: {ID: 100, TeamID: 10, FirstName: "Ada", LastName: "Quinn", IsActive: true},
			200: {ID: 200, TeamID: 20, FirstName: "Cy", LastName: "Stone", IsActive: true},
		},
		types: []stats.StatType{
			{ID: 1, SportID: 1, Abbreviation: "FG_MA", Kind: stats.KindNone, PointValue: 2},
			{ID: 2, SportID: 1, Abbreviation: "FG_MS", Kind: stats.KindNone},
			{ID: 3, SportID: 1, Abbreviation: "FG_AT", Kind: stats.KindSum,
				Components: []stats.Component{{Abbreviation: "FG_MA"}, {Abbreviation: "FG_MS"}}},
		},
		nextID: 500,
	}
}

func (l *league) Get(_ context.Context, id int64) (*data.Game, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := l.games[id]
	if !ok {
		return nil, data.ErrRecordNotFound
	}
	c := *g
	return &c, nil
}

func (l *league) InTx(_ context.Context, gameID int64, fn func(data.GameTx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := l.games[gameID]
	if !ok {
		return data.ErrRecordNotFound
	}

	staged := *g
	tx := &leagueTx{league: l, game: &staged}
	if err := fn(tx); err != nil {
		return err
	}

	l.games[gameID] = tx.game
	l.events = append(l.events, tx.inserted...)
	return nil
}

func (l *league) Catalog(_ context.Context, sportID int64) (*stats.Catalog, error) {
	types := make([]stats.StatType, 0)
	for _, t := range l.types {
		if t.SportID == sportID {
			types = append(types, t)
		}
	}
	return stats.NewCatalog(types)
}

func (l *league) gameEvents(gameID int64) []*data.PlayerStat {
	out := make([]*data.PlayerStat, 0)
	for _, e := range l.events {
		if e.GameID == gameID {
			out = append(out, e)
		}
	}
	return out
}

type leagueTx struct {
	league   *league
	game     *data.Game
	inserted []*data.PlayerStat
}

func (t *leagueTx) Game() *data.Game { return t.game }

func (t *leagueTx) Player(id int64) (*data.Player, error) {
	p, ok := t.league.players[id]
	if !ok {
		return nil, data.ErrRecordNotFound
	}
	return p, nil
}

func (t *leagueTx) StatType(id int64) (*stats.StatType, error) {
	for _, st := range t.league.types {
		if st.ID == id {
			return &st, nil
		}
	}
	return nil, data.ErrRecordNotFound
}

func (t *leagueTx) Roster() ([]*data.Player, error) {
	return []*data.Player{t.league.players[100], t.league.players[200]}, nil
}

func (t *leagueTx) Events() ([]*data.PlayerStat, error) {
	return append(t.league.gameEvents(t.game.ID), t.inserted...), nil
}

func (t *leagueTx) InsertPlayerStat(ps *data.PlayerStat) error {
	t.league.nextID++
	ps.ID = t.league.nextID
	ps.GameID = t.game.ID
	t.inserted = append(t.inserted, ps)
	return nil
}

func (t *leagueTx) EnsurePlayerStat(ps *data.PlayerStat) (bool, error) {
	return true, t.InsertPlayerStat(ps)
}

func (t *leagueTx) DeletePlayerStat(int64) error {
	return data.ErrRecordNotFound
}

func (t *leagueTx) UpdateScores(home, away int) error {
	t.game.HomeTeamScore = home
	t.game.AwayTeamScore = away
	return nil
}

func (t *leagueTx) UpdateState(status data.GameStatus, period int) error {
	t.game.Status = status
	t.game.CurrentPeriod = period
	return nil
}

type leagueRosters struct{ *league }

func (r leagueRosters) ListForGame(_ context.Context, game *data.Game) ([]*data.Player,
	error) {
	return []*data.Player{r.players[100], r.players[200]}, nil
}

type leagueTeams struct{ *league }

func (leagueTeams) Get(_ context.Context, id int64) (*data.Team, error) {
	names := map[int64]string{10: "Hawks", 20: "Owls"}
	name, ok := names[id]
	if !ok {
		return nil, data.ErrRecordNotFound
	}
	return &data.Team{ID: id, SportID: 1, Name: name}, nil
}

func (leagueTeams) Record(_ context.Context, teamID int64) (*data.Record, error) {
	if teamID != 10 {
		return nil, data.ErrRecordNotFound
	}
	return &data.Record{TeamID: 10, Wins: 3, Losses: 1}, nil
}

type leagueEvents struct{ *league }

func (e leagueEvents) Get(_ context.Context, id int64) (*data.PlayerStat, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, ev := range e.events {
		if ev.ID == id {
			return ev, nil
		}
	}
	return nil, data.ErrRecordNotFound
}

func (e leagueEvents) ListForGame(_ context.Context, gameID int64) ([]*data.PlayerStat, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.gameEvents(gameID), nil
}

func (e leagueEvents) GetAll(_ context.Context, f data.PlayerStatsFilter) ([]*data.PlayerStat,
	data.Metadata, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	events := e.gameEvents(f.GameID)
	return events, data.Metadata{CurrentPage: f.Page, PageSize: f.PageSize, FirstPage: 1,
		LastPage: 1, TotalRecords: len(events)}, nil
}

type leagueSports struct{}

func (leagueSports) Get(_ context.Context, id int64) (*data.Sport, error) {
	if id != 1 {
		return nil, data.ErrRecordNotFound
	}
	return &data.Sport{ID: 1, Name: "Basketball"}, nil
}

func newTestApplication(t *testing.T) (*application, *league) {
	t.Helper()

	l := newLeague()
	logger := zerolog.New(io.Discard)

	var cfg config
	cfg.version = "test"
	cfg.env = "testing"

	return &application{
		logger: logger,
		config: cfg,
		services: service.New(service.Deps{
			Games:    l,
			Rosters:  leagueRosters{l},
			Teams:    leagueTeams{l},
			Events:   leagueEvents{l},
			Catalogs: l,
			Logger:   logger,
		}),
		events:   leagueEvents{l},
		teams:    leagueTeams{l},
		sports:   leagueSports{},
		catalogs: l,
	}, l
}

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return &testServer{ts}
}

func (ts *testServer) do(t *testing.T, method, path string, body string) (int, http.Header,
	string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}

	rs, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer rs.Body.Close()

	b, err := io.ReadAll(rs.Body)
	if err != nil {
		t.Fatal(err)
	}

	return rs.StatusCode, rs.Header, string(bytes.TrimSpace(b))
}

func decode[T any](t *testing.T, body string) T {
	t.Helper()

	var v T
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		t.Fatalf("decoding %q: %v", body, err)
	}
	return v
}

package service

import (
	"LeagueStatsApi/internal/data"
	"LeagueStatsApi/internal/stats"
	"context"
	"io"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

// memStore is an in-memory league. InTx stages writes on copies and keeps them only when
// the callback succeeds, like the Postgres models.
type memStore struct {
	mu        sync.Mutex
	games     map[int64]*data.Game
	teams     map[int64]*data.Team
	players   map[int64]*data.Player
	types     map[int64]stats.StatType
	events    []*data.PlayerStat
	nextID    int64
	conflicts int
	txCalls   int
}

func ptr[T any](v T) *T {
	return &v
}

func newLeague() *memStore {
	m := &memStore{
		games: map[int64]*data.Game{
			1: {ID: 1, SportID: 1, HomeTeamID: 10, AwayTeamID: 20,
				Status: data.GameInProgress, CurrentPeriod: 1},
			2: {ID: 2, SportID: 1, HomeTeamID: 10, AwayTeamID: 20,
				Status: data.GameCompleted, CurrentPeriod: 4, HomeTeamScore: 2},
			3: {ID: 3, SportID: 1, HomeTeamID: 10, AwayTeamID: 20,
				Status: data.GameScheduled},
		},
		teams: map[int64]*data.Team{
			10: {ID: 10, SportID: 1, Name: "Hawks"},
			20: {ID: 20, SportID: 1, Name: "Owls"},
		},
		players: map[int64]*data.Player{
			100: {ID: 100, TeamID: 10, FirstName: "Ada", LastName: "Quinn", JerseyNumber: ptr(23),
				IsActive: true},
			101: {ID: 101, TeamID: 10, FirstName: "Bo", LastName: "Reyes", IsActive: true},
			200: {ID: 200, TeamID: 20, FirstName: "Cy", LastName: "Stone", JerseyNumber: ptr(7),
				IsActive: true},
			201: {ID: 201, TeamID: 20, FirstName: "Di", LastName: "Tran", IsActive: false},
			300: {ID: 300, TeamID: 30, FirstName: "Ed", LastName: "Vale", IsActive: true},
		},
		types:  make(map[int64]stats.StatType),
		nextID: 1000,
	}

	for _, t := range []stats.StatType{
		{ID: 1, SportID: 1, Abbreviation: "FG_MA", Kind: stats.KindNone, PointValue: 2},
		{ID: 2, SportID: 1, Abbreviation: "FG_MS", Kind: stats.KindNone},
		{ID: 3, SportID: 1, Abbreviation: "FG_AT", Kind: stats.KindSum, Components: []stats.Component{
			{Abbreviation: "FG_MA"}, {Abbreviation: "FG_MS"},
		}},
		{ID: 4, SportID: 1, Abbreviation: "FG_PC", Kind: stats.KindPercentage,
			Components: []stats.Component{
				{Abbreviation: "FG_MA", Role: stats.RoleMade},
				{Abbreviation: "FG_AT", Role: stats.RoleAttempted},
			}},
		{ID: 5, SportID: 1, Abbreviation: "FT_MA", Kind: stats.KindNone, PointValue: 1},
		{ID: 6, SportID: 1, Abbreviation: "FT_MS", Kind: stats.KindNone},
		{ID: 7, SportID: 1, Abbreviation: "FT_TRY", Kind: stats.KindNone, IsCounter: true,
			RelatedID: ptr(int64(6)), Related: "FT_MS"},
		{ID: 8, SportID: 1, Abbreviation: "BAD_PC", Kind: stats.KindPercentage,
			Components: []stats.Component{{Abbreviation: "FT_MA"}, {Abbreviation: "FT_MS"}}},
		{ID: 9, SportID: 2, Abbreviation: "GOAL", Kind: stats.KindNone, PointValue: 1},
	} {
		m.types[t.ID] = t
	}

	return m
}

// seed appends events directly, bypassing validation and score updates.
func (m *memStore) seed(gameID, playerID, statTypeID int64, period, n int) {
	for range n {
		m.nextID++
		m.events = append(m.events, &data.PlayerStat{ID: m.nextID, PlayerID: playerID,
			GameID: gameID, StatTypeID: statTypeID, Period: period})
	}
}

func (m *memStore) countEvents(gameID, statTypeID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, e := range m.events {
		if e.GameID == gameID && e.StatTypeID == statTypeID {
			n++
		}
	}
	return n
}

func (m *memStore) game(id int64) data.Game {
	m.mu.Lock()
	defer m.mu.Unlock()

	return *m.games[id]
}

// resolve fills the joined columns the Postgres model reads from stat_types and players.
func (m *memStore) resolve(events []*data.PlayerStat, gameID int64) []*data.PlayerStat {
	out := make([]*data.PlayerStat, 0)
	for _, e := range events {
		if e.GameID != gameID {
			continue
		}
		c := *e
		c.Abbreviation = m.types[e.StatTypeID].Abbreviation
		if p, ok := m.players[e.PlayerID]; ok {
			c.TeamID = p.TeamID
		}
		out = append(out, &c)
	}
	return out
}

type memGames struct{ *memStore }

func (g memGames) Get(_ context.Context, id int64) (*data.Game, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	game, ok := g.games[id]
	if !ok {
		return nil, data.ErrRecordNotFound
	}
	c := *game
	return &c, nil
}

func (g memGames) InTx(_ context.Context, gameID int64, fn func(data.GameTx) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.txCalls++
	if g.conflicts > 0 {
		g.conflicts--
		return data.ErrTxConflict
	}

	game, ok := g.games[gameID]
	if !ok {
		return data.ErrRecordNotFound
	}

	staged := *game
	tx := &memTx{store: g.memStore, game: &staged, events: slices.Clone(g.events),
		nextID: g.nextID}
	if err := fn(tx); err != nil {
		return err
	}

	g.games[gameID] = tx.game
	g.events = tx.events
	g.nextID = tx.nextID
	return nil
}

type memTx struct {
	store  *memStore
	game   *data.Game
	events []*data.PlayerStat
	nextID int64
}

func (t *memTx) Game() *data.Game { return t.game }

func (t *memTx) Player(id int64) (*data.Player, error) {
	p, ok := t.store.players[id]
	if !ok {
		return nil, data.ErrRecordNotFound
	}
	c := *p
	return &c, nil
}

func (t *memTx) StatType(id int64) (*stats.StatType, error) {
	st, ok := t.store.types[id]
	if !ok {
		return nil, data.ErrRecordNotFound
	}
	return &st, nil
}

func (t *memTx) Roster() ([]*data.Player, error) {
	return t.store.roster(t.game), nil
}

func (t *memTx) Events() ([]*data.PlayerStat, error) {
	return t.store.resolve(t.events, t.game.ID), nil
}

func (t *memTx) InsertPlayerStat(ps *data.PlayerStat) error {
	t.nextID++
	ps.ID = t.nextID
	ps.GameID = t.game.ID
	c := *ps
	t.events = append(t.events, &c)
	return nil
}

func (t *memTx) EnsurePlayerStat(ps *data.PlayerStat) (bool, error) {
	for _, e := range t.events {
		if e.GameID == t.game.ID && e.PlayerID == ps.PlayerID &&
			e.StatTypeID == ps.StatTypeID && e.Period == ps.Period {
			return false, nil
		}
	}
	return true, t.InsertPlayerStat(ps)
}

func (t *memTx) DeletePlayerStat(id int64) error {
	i := slices.IndexFunc(t.events, func(e *data.PlayerStat) bool {
		return e.ID == id && e.GameID == t.game.ID
	})
	if i == -1 {
		return data.ErrRecordNotFound
	}
	t.events = slices.Delete(t.events, i, i+1)
	return nil
}

func (t *memTx) UpdateScores(home, away int) error {
	t.game.HomeTeamScore = home
	t.game.AwayTeamScore = away
	t.game.Version++
	return nil
}

func (t *memTx) UpdateState(status data.GameStatus, period int) error {
	t.game.Status = status
	t.game.CurrentPeriod = period
	t.game.Version++
	return nil
}

func (m *memStore) roster(game *data.Game) []*data.Player {
	players := make([]*data.Player, 0)
	for _, teamID := range []int64{game.HomeTeamID, game.AwayTeamID} {
		ids := make([]int64, 0)
		for id, p := range m.players {
			if p.TeamID == teamID {
				ids = append(ids, id)
			}
		}
		slices.Sort(ids)
		for _, id := range ids {
			c := *m.players[id]
			players = append(players, &c)
		}
	}
	return players
}

type memRosters struct{ *memStore }

func (r memRosters) ListForGame(_ context.Context, game *data.Game) ([]*data.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.roster(game), nil
}

type memTeams struct{ *memStore }

func (t memTeams) Get(_ context.Context, id int64) (*data.Team, error) {
	team, ok := t.teams[id]
	if !ok {
		return nil, data.ErrRecordNotFound
	}
	c := *team
	return &c, nil
}

type memEvents struct{ *memStore }

func (e memEvents) Get(_ context.Context, id int64) (*data.PlayerStat, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, ev := range e.events {
		if ev.ID == id {
			c := *ev
			return &c, nil
		}
	}
	return nil, data.ErrRecordNotFound
}

func (e memEvents) ListForGame(_ context.Context, gameID int64) ([]*data.PlayerStat, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.resolve(e.events, gameID), nil
}

// memCatalogs builds catalogs straight from the stat types. The store lock is not taken
// because it may already be held by InTx.
type memCatalogs struct{ *memStore }

func (c memCatalogs) Catalog(_ context.Context, sportID int64) (*stats.Catalog, error) {
	types := make([]stats.StatType, 0)
	for _, t := range c.types {
		if t.SportID == sportID {
			types = append(types, t)
		}
	}
	return stats.NewCatalog(types)
}

func newTestServices(m *memStore) Services {
	return New(Deps{
		Games:    memGames{m},
		Rosters:  memRosters{m},
		Teams:    memTeams{m},
		Events:   memEvents{m},
		Catalogs: memCatalogs{m},
		Logger:   zerolog.New(io.Discard),
	})
}

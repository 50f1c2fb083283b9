package main

import (
	"LeagueStatsApi/internal/data"
	"context"
	"net/http"
)

func (app *application) GetGame(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	game, err := app.services.Games.Get(r.Context(), id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"game": game}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type gameAction func(ctx context.Context, gameID int64) (*data.Game, error)

// gameActionHandler adapts a lifecycle operation on the game named in the URL.
func (app *application) gameActionHandler(action gameAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := app.readIDParam(r)
		if err != nil {
			app.notFoundResponse(w, r)
			return
		}

		game, err := action(r.Context(), id)
		if err != nil {
			app.serviceErrorResponse(w, r, err)
			return
		}

		err = app.writeJSON(w, http.StatusOK, envelope{"game": game}, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}
	}
}

func (app *application) StartGame(w http.ResponseWriter, r *http.Request) {
	app.gameActionHandler(app.services.Games.Start)(w, r)
}

func (app *application) CompleteGame(w http.ResponseWriter, r *http.Request) {
	app.gameActionHandler(app.services.Games.Complete)(w, r)
}

func (app *application) PostponeGame(w http.ResponseWriter, r *http.Request) {
	app.gameActionHandler(app.services.Games.Postpone)(w, r)
}

func (app *application) AdvanceGamePeriod(w http.ResponseWriter, r *http.Request) {
	app.gameActionHandler(app.services.Games.AdvancePeriod)(w, r)
}

func (app *application) RecalculateScores(w http.ResponseWriter, r *http.Request) {
	app.gameActionHandler(app.services.Scores.Recalculate)(w, r)
}

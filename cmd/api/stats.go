package main

import (
	"LeagueStatsApi/internal/service"
	"LeagueStatsApi/internal/validator"
	"net/http"
)

func (app *application) readSummaryQuery(r *http.Request, v *validator.Validator) (int64,
	service.TeamFilter) {
	qs := r.URL.Query()

	gameID := app.readInt64(qs, "game_id", 0, v)
	team := app.readString(qs, "team", "")

	v.Check(gameID > 0, "game_id", "must be provided")
	v.Check(validator.PermittedValue(service.TeamFilter(team), service.TeamAll, service.TeamHome,
		service.TeamAway), "team", `must be "home_team" or "away_team"`)

	return gameID, service.TeamFilter(team)
}

func (app *application) PlayersSummary(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	gameID, filter := app.readSummaryQuery(r, v)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	players, err := app.services.Summary.Players(r.Context(), gameID, filter)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"players": players}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) TeamsSummary(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	gameID, filter := app.readSummaryQuery(r, v)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	teams, err := app.services.Summary.Teams(r.Context(), gameID, filter)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"teams": teams}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

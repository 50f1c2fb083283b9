package main

import (
	"LeagueStatsApi/internal/data"
	"LeagueStatsApi/internal/service"
	"LeagueStatsApi/internal/validator"
	"fmt"
	"net/http"
)

func (app *application) RecordPlayerStat(w http.ResponseWriter, r *http.Request) {
	var input service.RecordInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	if service.ValidateRecordInput(v, input); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	result, err := app.services.Recording.Record(r.Context(), input)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/player-stats/%d", result.Event.ID))

	response := envelope{"player_stat": result.Event, "game": result.Game}
	if result.Companion != nil {
		response["companion"] = result.Companion
	}

	err = app.writeJSON(w, http.StatusCreated, response, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) ListPlayerStats(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	v := validator.New()

	var filter data.PlayerStatsFilter
	filter.GameID = app.readInt64(qs, "game", 0, v)
	filter.PlayerID = app.readInt64(qs, "player", 0, v)
	filter.Period = app.readInt(qs, "period", 0, v)

	filter.Filters.Page = app.readInt(qs, "page", 1, v)
	filter.Filters.PageSize = app.readInt(qs, "page_size", 20, v)
	filter.Filters.Sort = app.readString(qs, "sort", "-created_at")
	filter.Filters.SortSafeList = []string{"id", "period", "created_at", "-id", "-period",
		"-created_at"}

	if data.ValidatePlayerStatsFilter(v, filter); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	events, metadata, err := app.events.GetAll(r.Context(), filter)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"metadata": metadata, "player_stats": events},
		nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) DeletePlayerStat(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	game, err := app.services.Recording.Undo(r.Context(), id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{
		"message": fmt.Sprintf("player stat (%d) successfully deleted", id),
		"game":    game,
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

package main

import "net/http"

func (app *application) GetSportStatTypes(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	sport, err := app.sports.Get(r.Context(), id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	catalog, err := app.catalogs.Catalog(r.Context(), sport.ID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"sport": sport, "catalog": catalog.View()}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

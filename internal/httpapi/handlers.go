package httpapi

import (
	"net/http"
)

const defaultPage = 1

func (a *API) HandleQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	if a.bank == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "question bank unavailable"})
		return
	}

	page, err := parseIntParam(r, "page", defaultPage)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	items, err := a.bank.Page(r.Context(), page, a.pageSize)
	if err != nil {
		a.writeBankError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleRevisionQuestions serves every question in the requested themes.
// The service keeps no answer history, so incorrect_only is accepted and
// left to the client.
func (a *API) HandleRevisionQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	if a.bank == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "question bank unavailable"})
		return
	}

	themeIDs, err := parseIntList(r, "themes")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	items, err := a.bank.ByThemes(r.Context(), themeIDs)
	if err != nil {
		a.writeBankError(w, err)
		return
	}
	a.log.Debug("revision questions served", "themes", themeIDs, "incorrect_only", parseBoolParam(r, "incorrect_only"), "count", len(items))
	writeJSON(w, http.StatusOK, items)
}

func (a *API) HandleThemes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	if a.bank == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "question bank unavailable"})
		return
	}

	themes, err := a.bank.Themes(r.Context())
	if err != nil {
		a.writeBankError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, themes)
}

func (a *API) HandleAchievements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	if a.bank == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "question bank unavailable"})
		return
	}

	achievements, err := a.bank.Achievements(r.Context())
	if err != nil {
		a.writeBankError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, achievements)
}

func (a *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	if a.bank == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "question bank unavailable"})
		return
	}

	count, err := a.bank.Count(r.Context())
	if err != nil {
		a.writeBankError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Questions: count})
}

package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"recept-slider/internal/common"
	"recept-slider/internal/export"
	"recept-slider/internal/metrics"
	"recept-slider/internal/recipe"
	"recept-slider/internal/storage"
)

func (s *Server) session(w http.ResponseWriter, r *http.Request) *Session {
	sess, cookie := s.sessions.Acquire(r)
	if cookie != nil {
		http.SetCookie(w, cookie)
	}
	return sess
}

// redirectHome sends the browser back to the page, keeping the search term.
func redirectHome(w http.ResponseWriter, r *http.Request) {
	target := "/"
	if q := strings.TrimSpace(r.FormValue("q")); q != "" {
		target += "?" + url.Values{"q": {q}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	query := r.URL.Query()
	q := strings.TrimSpace(query.Get("q"))

	est := s.estimate(r.Context(), sess.Masses())
	data := pageData{
		Sliders: sliders(est.Masses),
		Total:   fmt.Sprintf("%.2f", est.Total),
		Error:   est.Message(),
		Flash:   sess.TakeFlash(),
		Query:   q,
		Columns: recipe.ExportColumns(),
		Model:   s.predictor.Info(),
	}
	if est.Result != nil {
		data.Prediction = newPredictionView(est.Result.Prediction)
		data.Percentages = percentages(est.Percentages)
		data.OutOfRange = est.Result.OutOfRange
	}

	store := sess.Recipes()
	data.HasRecipes = store.Len() > 0

	selected := make(map[string]bool)
	for _, id := range query["compare"] {
		selected[id] = true
	}
	data.Recipes = recipeViews(store.Filter(q), selected)
	data.Compare = recipeViews(store.Select(query["compare"]), nil)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("failed to render page")
	}
}

// handleEstimate stores posted masses without JavaScript.
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	m, err := parseMasses(r.PostForm)
	if err != nil {
		sess.SetFlash(FlashError, fmt.Sprintf(msgInvalidInput, err))
	} else {
		sess.SetMasses(m)
	}
	redirectHome(w, r)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	defer redirectHome(w, r)

	m, err := parseMasses(r.PostForm)
	if err != nil {
		s.recorder.SaveRejected(metrics.ReasonInvalid)
		sess.SetFlash(FlashError, fmt.Sprintf(msgInvalidInput, err))
		return
	}
	sess.SetMasses(m)

	name := strings.TrimSpace(r.PostForm.Get("name"))
	if m.Total() == 0 {
		s.recorder.SaveRejected(metrics.ReasonZeroTotal)
		sess.SetFlash(FlashError, msgEmptyRecipe)
		return
	}
	if name == "" {
		s.recorder.SaveRejected(metrics.ReasonEmptyName)
		sess.SetFlash(FlashWarning, msgNoName)
		return
	}

	est := s.estimate(r.Context(), m)
	if est.Err != nil {
		s.recorder.SaveRejected(metrics.ReasonInvalid)
		sess.SetFlash(FlashError, est.Message())
		return
	}

	rec, err := sess.Recipes().Save(name, m, est.Result.Prediction)
	switch {
	case errors.Is(err, recipe.ErrZeroTotal):
		s.recorder.SaveRejected(metrics.ReasonZeroTotal)
		sess.SetFlash(FlashError, msgEmptyRecipe)
		return
	case errors.Is(err, recipe.ErrEmptyName):
		s.recorder.SaveRejected(metrics.ReasonEmptyName)
		sess.SetFlash(FlashWarning, msgNoName)
		return
	case err != nil:
		s.recorder.SaveRejected(metrics.ReasonInvalid)
		sess.SetFlash(FlashError, fmt.Sprintf(msgInvalidInput, err))
		return
	}

	s.recorder.RecipeSaved()
	s.journalRecipe(rec, est)
	sess.SetFlash(FlashSuccess, fmt.Sprintf(msgSaved, rec.Name))

	log.Debug().Str("session", sess.ID).Str("recipe", rec.ID).Str("name", rec.Name).Msg("Recipe saved")
}

// journalRecipe appends a saved recipe to the journal. Journal failures never
// reach the user.
func (s *Server) journalRecipe(rec recipe.Recipe, est Estimate) {
	if s.journal == nil {
		return
	}
	entry := storage.Entry{
		ID:           rec.ID,
		Name:         rec.Name,
		RecordedAt:   rec.CreatedAt,
		Percentages:  est.Percentages,
		Masses:       rec.Masses,
		Prediction:   rec.Prediction,
		ModelVersion: s.predictor.Info().Version,
	}
	if err := s.journal.Record(entry); err != nil {
		s.recorder.JournalErrorInc()
		log.Warn().Err(err).Str("recipe", rec.ID).Msg("Failed to journal recipe")
		return
	}
	s.recorder.JournalWriteInc()
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	id := mux.Vars(r)["id"]

	rec, err := sess.Recipes().Get(id)
	if err == nil {
		err = sess.Recipes().Delete(id)
	}
	if err != nil {
		sess.SetFlash(FlashError, msgNotFound)
	} else {
		s.recorder.RecipeDeleted()
		sess.SetFlash(FlashSuccess, fmt.Sprintf(msgDeleted, rec.Name))
	}
	redirectHome(w, r)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Recipes().Reset()
	s.recorder.ListReset()
	sess.SetFlash(FlashSuccess, msgReset)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	w.Header().Set("Content-Type", common.ExportMIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", common.ExportFileName))
	if err := export.WriteRecipes(w, sess.Recipes().List()); err != nil {
		log.Error().Err(err).Msg("failed to export recipes")
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	s.recorder.ExportServed()
}

func (s *Server) handleRecipesAPI(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	recipes := sess.Recipes().Filter(r.URL.Query().Get("q"))
	if recipes == nil {
		recipes = []recipe.Recipe{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(recipes); err != nil {
		log.Warn().Err(err).Msg("failed to encode recipes")
	}
}

type wsRequest struct {
	Masses []float64 `json:"masses"`
}

type wsResponse struct {
	Masses      []float64          `json:"masses"`
	Total       float64            `json:"total"`
	Percentages []float64          `json:"percentages,omitempty"`
	Prediction  *recipe.Prediction `json:"prediction,omitempty"`
	Labels      *predictionView    `json:"labels,omitempty"`
	Error       string             `json:"error,omitempty"`
	OutOfRange  []string           `json:"outOfRange,omitempty"`
}

func newWSResponse(est Estimate) wsResponse {
	resp := wsResponse{
		Masses: est.Masses[:],
		Total:  recipe.Round2(est.Total),
		Error:  est.Message(),
	}
	if est.Result != nil {
		pct := est.Percentages.Round()
		resp.Percentages = pct.Slice()
		pred := est.Result.Prediction
		resp.Prediction = &pred
		resp.Labels = newPredictionView(pred)
		resp.OutOfRange = est.Result.OutOfRange
	}
	return resp
}

// handleWebSocket recomputes the estimate for every masses message and
// remembers the latest masses in the session.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, cookie := s.sessions.Acquire(r)
	var header http.Header
	if cookie != nil {
		header = http.Header{"Set-Cookie": {cookie.String()}}
	}

	conn, err := s.upgrader.Upgrade(w, r, header)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	s.recorder.WSConnectionsAdd(1)
	defer s.recorder.WSConnectionsAdd(-1)

	conn.SetReadLimit(4096)

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("websocket closed")
			}
			return
		}

		var resp wsResponse
		m, err := massesFromSlice(req.Masses)
		if err != nil {
			resp = wsResponse{Error: fmt.Sprintf(msgInvalidInput, err)}
		} else {
			sess.SetMasses(m)
			resp = newWSResponse(s.estimate(r.Context(), m))
		}

		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(resp); err != nil {
			log.Debug().Err(err).Msg("websocket write failed")
			return
		}
	}
}

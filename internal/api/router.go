// Package api exposes the survey tool over HTTP. Handlers stay thin:
// decode, call a service, encode. Authorization is claims-based; admin
// routes are wrapped with middleware.RequireAdmin and respondent routes
// take the user id from the token, never from the request body.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Praveen5612/skill-survey-bot/internal/catalog"
	"github.com/Praveen5612/skill-survey-bot/internal/directory"
	"github.com/Praveen5612/skill-survey-bot/internal/middleware"
	"github.com/Praveen5612/skill-survey-bot/internal/services"
	"github.com/Praveen5612/skill-survey-bot/internal/store"
)

type Router struct {
	auth    *services.AuthService
	surveys *services.SurveyService
	gaps    *services.GapService
	matches *services.MatchService
	exports *services.ExportService
	catalog *catalog.Catalog
	users   *directory.Directory
}

func NewRouter(
	auth *services.AuthService,
	surveys *services.SurveyService,
	gaps *services.GapService,
	matches *services.MatchService,
	exports *services.ExportService,
	cat *catalog.Catalog,
	users *directory.Directory,
) *Router {
	return &Router{
		auth:    auth,
		surveys: surveys,
		gaps:    gaps,
		matches: matches,
		exports: exports,
		catalog: cat,
		users:   users,
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/login", rt.handleLogin)                                           // POST
	mux.Handle("/api/processes", middleware.RequireAuth(http.HandlerFunc(rt.handleProcesses))) // GET
	mux.Handle("/api/users", middleware.RequireAdmin(http.HandlerFunc(rt.handleUsers)))        // GET
	mux.Handle("/api/surveys", middleware.RequireAuth(http.HandlerFunc(rt.handleSurveys)))     // GET, POST
	mux.Handle("/api/surveys/", middleware.RequireAuth(http.HandlerFunc(rt.handleSurveyScoped)))
	mux.Handle("/api/my/surveys", middleware.RequireAuth(http.HandlerFunc(rt.handleMySurveys))) // GET
	mux.Handle("/api/export", middleware.RequireAdmin(http.HandlerFunc(rt.handleExport)))       // GET
}

// POST /api/login — {email, password} -> {token, user_id, name, email, role}
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, res)
}

// GET /api/processes — the loaded catalog
func (rt *Router) handleProcesses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, rt.catalog.List())
}

// GET /api/users — directory listing, admin only
func (rt *Router) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, rt.users.List())
}

// GET  /api/surveys — all surveys
// POST /api/surveys — create, admin only
func (rt *Router) handleSurveys(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := rt.surveys.ListSurveys()
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, list)
	case http.MethodPost:
		if !isAdmin(r) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		var req struct {
			Process   string   `json:"process"`
			Skills    []string `json:"skills"`
			Questions []string `json:"questions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sv, err := rt.surveys.CreateSurvey(req.Process, req.Skills, req.Questions)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, sv)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// /api/surveys/{id}             GET (any user), DELETE (admin)
// /api/surveys/{id}/assign      POST (admin)
// /api/surveys/{id}/responses   POST (respondent), GET (admin)
// /api/surveys/{id}/summary     GET (admin)
// /api/surveys/{id}/matches     GET (admin)
func (rt *Router) handleSurveyScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/surveys/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}
	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}

	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			sv, err := rt.surveys.GetSurvey(id)
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, sv)
		case http.MethodDelete:
			if !isAdmin(r) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			if err := rt.surveys.DeleteSurvey(id); err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, map[string]any{"ok": true})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	case "assign":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !isAdmin(r) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		var req struct {
			UserIDs []string `json:"user_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := rt.surveys.AssignSurvey(id, req.UserIDs); err != nil {
			writeErr(w, err)
			return
		}
		assignees, err := rt.surveys.Assignees(id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, map[string]any{"survey_id": id, "assignees": assignees})
	case "responses":
		switch r.Method {
		case http.MethodPost:
			rt.submitResponse(w, r, id)
		case http.MethodGet:
			if !isAdmin(r) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			views, err := rt.surveys.Responses(id)
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, views)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	case "summary":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !isAdmin(r) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		sum, err := rt.gaps.Summary(id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, sum)
	case "matches":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !isAdmin(r) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		ms, err := rt.matches.FindCandidatesForMissing(id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, ms)
	default:
		http.NotFound(w, r)
	}
}

func (rt *Router) submitResponse(w http.ResponseWriter, r *http.Request, surveyID string) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req struct {
		SelectedSkills  []string                `json:"skills_selected"`
		SkillRatings    map[string]store.Rating `json:"skill_ratings"`
		QuestionAnswers map[string]string       `json:"answers"`
		Comments        string                  `json:"comments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	resp, err := rt.surveys.SubmitResponse(services.SubmitRequest{
		SurveyID:        surveyID,
		UserID:          claims.UID,
		SelectedSkills:  req.SelectedSkills,
		SkillRatings:    req.SkillRatings,
		QuestionAnswers: req.QuestionAnswers,
		Comments:        req.Comments,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, resp)
}

// GET /api/my/surveys — surveys assigned to the caller
func (rt *Router) handleMySurveys(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := rt.surveys.SurveysForUser(claims.UID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, list)
}

// GET /api/export?survey_id=ID&format=long|wide — CSV download, admin only
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	surveyID := r.URL.Query().Get("survey_id")
	if surveyID == "" {
		http.Error(w, "survey_id required", http.StatusBadRequest)
		return
	}
	res, err := rt.exports.ExportCSV(surveyID, r.URL.Query().Get("format"))
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+res.Filename+"\"")
	_, _ = w.Write(res.Data)
}

func isAdmin(r *http.Request) bool {
	c, ok := middleware.ClaimsFromContext(r.Context())
	return ok && c.Role == string(directory.RoleAdmin)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeErr maps service errors to HTTP statuses. Unclassified errors are
// logged and reported as 500 without leaking internals.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownSurvey):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, services.ErrUnknownProcess), errors.Is(err, services.ErrUnknownUser):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if se, ok := services.AsServiceError(err); ok {
		switch se.Code {
		case services.ErrorInvalid:
			http.Error(w, se.Message, http.StatusBadRequest)
		case services.ErrorUnauthorized:
			http.Error(w, se.Message, http.StatusUnauthorized)
		case services.ErrorForbidden:
			http.Error(w, se.Message, http.StatusForbidden)
		case services.ErrorNotFound:
			http.Error(w, se.Message, http.StatusNotFound)
		default:
			http.Error(w, se.Message, http.StatusBadRequest)
		}
		return
	}
	slog.Error("request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

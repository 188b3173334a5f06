package content

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taiwoajasa245/confession-api/pkg/response"
)

var contentRules = []response.Rule{
	{Target: ErrNotFound, Status: http.StatusNotFound, Message: "Not found"},
	{Target: ErrInvalidDate, Status: http.StatusBadRequest, Message: "Invalid date"},
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetTodayHandler(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.EnsureTodaysContent(r.Context())
	if err != nil {
		response.FromError(w, err, contentRules...)
		return
	}
	response.Success(w, c, "successfully")
}

func (h *Handler) GetByDateHandler(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetByDate(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		response.FromError(w, err, contentRules...)
		return
	}
	response.Success(w, c, "successfully")
}

func (h *Handler) ListRecentHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.Error(w, http.StatusBadRequest, "Invalid limit", map[string]string{
				"limit": "limit must be a positive integer",
			})
			return
		}
		limit = n
	}

	items, err := h.service.ListRecent(r.Context(), limit)
	if err != nil {
		response.FromError(w, err, contentRules...)
		return
	}
	response.Success(w, items, "successfully")
}

func (h *Handler) RegenerateHandler(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.ForceRegenerate(r.Context())
	if err != nil {
		response.FromError(w, err, contentRules...)
		return
	}
	response.Success(w, c, "Daily content regenerated")
}

func (h *Handler) DeleteByDateHandler(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if err := h.service.DeleteByDate(r.Context(), date); err != nil {
		response.FromError(w, err, contentRules...)
		return
	}
	response.Success(w, map[string]string{"date": date}, "Daily content deleted")
}

func (h *Handler) GenerateVersesHandler(w http.ResponseWriter, r *http.Request) {
	var req GenerateVersesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}

	verses, err := h.service.GenerateVerses(r.Context(), req)
	if err != nil {
		response.FromError(w, err, contentRules...)
		return
	}
	response.Created(w, verses, "Verses generated")
}

func (h *Handler) GenerateConfessionsHandler(w http.ResponseWriter, r *http.Request) {
	var req GenerateConfessionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}

	confessions, err := h.service.GenerateConfessions(r.Context(), req)
	if err != nil {
		response.FromError(w, err, contentRules...)
		return
	}
	response.Created(w, confessions, "Confessions generated")
}

func (h *Handler) CreatePlanHandler(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}

	missing := map[string]string{}
	if strings.TrimSpace(req.Topic) == "" {
		missing["topic"] = "topic is required"
	}
	if req.DurationDays == 0 {
		missing["duration_days"] = "duration_days is required"
	}
	if len(missing) > 0 {
		response.Error(w, http.StatusBadRequest, "Missing required fields", missing)
		return
	}

	plan, err := h.service.CreateReadingPlan(r.Context(), req)
	if err != nil {
		response.FromError(w, err, contentRules...)
		return
	}
	response.Created(w, plan, "Reading plan created")
}

func (h *Handler) GetPlanHandler(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.GetReadingPlan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err, contentRules...)
		return
	}
	response.Success(w, plan, "successfully")
}

// Routes mounts the public and admin endpoints. admin wraps the routes that
// change stored content.
func (h *Handler) Routes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/daily-content", h.GetTodayHandler)
	r.Get("/daily-content/recent", h.ListRecentHandler)
	r.Get("/daily-content/{date}", h.GetByDateHandler)
	r.Post("/reading-plans", h.CreatePlanHandler)
	r.Get("/reading-plans/{id}", h.GetPlanHandler)

	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Post("/daily-content/regenerate", h.RegenerateHandler)
		r.Delete("/daily-content/{date}", h.DeleteByDateHandler)
		r.Post("/verses/generate", h.GenerateVersesHandler)
		r.Post("/confessions/generate", h.GenerateConfessionsHandler)
	})
}

// Package v1 provides the v1 REST routes.
package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/helixml/affinity"
	"github.com/helixml/affinity/application/service"
	"github.com/helixml/affinity/infrastructure/api/jsonapi"
	"github.com/helixml/affinity/infrastructure/api/middleware"
	"github.com/helixml/affinity/infrastructure/api/v1/dto"
)

// GoalsRouter handles goal and match endpoints.
type GoalsRouter struct {
	client     *affinity.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewGoalsRouter creates a new GoalsRouter.
func NewGoalsRouter(client *affinity.Client) *GoalsRouter {
	return &GoalsRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for goal endpoints.
func (r *GoalsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/", r.Create)
	router.Get("/{id}", r.Get)
	router.Put("/{id}", r.Put)
	router.Delete("/{id}", r.Delete)
	router.Get("/{id}/matches", r.Matches)

	return router
}

// List handles GET /api/v1/goals?owner_id=...
//
//	@Summary		List goals
//	@Description	List one owner's goals, oldest first
//	@Tags			goals
//	@Produce		json
//	@Param			owner_id	query		string	true	"Owner ID"
//	@Param			page		query		int		false	"Page number (default: 1)"
//	@Param			page_size	query		int		false	"Results per page (default: 20, max: 100)"
//	@Success		200			{object}	jsonapi.Document{data=[]jsonapi.Resource}
//	@Failure		400			{object}	jsonapi.Document
//	@Router			/goals [get]
func (r *GoalsRouter) List(w http.ResponseWriter, req *http.Request) {
	ownerID := req.URL.Query().Get("owner_id")
	if ownerID == "" {
		middleware.WriteError(w, req, middleware.BadRequest("owner_id query parameter is required", nil), r.logger)
		return
	}

	goals, err := r.client.Directory.Goals(req.Context(), ownerID)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	page, meta, links := Paginate(req, goals)
	doc := jsonapi.NewListResponse(r.serializer.GoalResources(page))
	doc.Meta = meta
	doc.Links = links
	middleware.WriteDocument(w, http.StatusOK, doc)
}

// Get handles GET /api/v1/goals/{id}.
//
//	@Summary	Get goal
//	@Tags		goals
//	@Produce	json
//	@Param		id	path		string	true	"Goal ID"
//	@Success	200	{object}	jsonapi.Document{data=jsonapi.Resource}
//	@Failure	404	{object}	jsonapi.Document
//	@Router		/goals/{id} [get]
func (r *GoalsRouter) Get(w http.ResponseWriter, req *http.Request) {
	g, err := r.client.Directory.Goal(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteDocument(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.GoalResource(g)))
}

// Create handles POST /api/v1/goals. The server assigns the ID unless the
// body carries one.
//
//	@Summary	Create goal
//	@Tags		goals
//	@Accept		json
//	@Produce	json
//	@Param		body	body		dto.GoalRequest	true	"Goal"
//	@Success	201		{object}	jsonapi.Document{data=jsonapi.Resource}
//	@Failure	400		{object}	jsonapi.Document
//	@Failure	401		{object}	jsonapi.Document
//	@Security	APIKeyAuth
//	@Router		/goals [post]
func (r *GoalsRouter) Create(w http.ResponseWriter, req *http.Request) {
	body, ok := r.decode(w, req, "")
	if !ok {
		return
	}

	id := body.Data.ID
	if id == "" {
		id = uuid.NewString()
	}
	saved, err := r.client.Directory.SaveGoal(req.Context(), body.ToDomain(id))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.Header().Set("Location", strings.TrimSuffix(req.URL.Path, "/")+"/"+saved.ID())
	middleware.WriteDocument(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.GoalResource(saved)))
}

// Put handles PUT /api/v1/goals/{id}, creating or replacing the goal.
//
//	@Summary	Create or replace goal
//	@Tags		goals
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Goal ID"
//	@Param		body	body		dto.GoalRequest	true	"Goal"
//	@Success	200		{object}	jsonapi.Document{data=jsonapi.Resource}
//	@Failure	400		{object}	jsonapi.Document
//	@Failure	401		{object}	jsonapi.Document
//	@Security	APIKeyAuth
//	@Router		/goals/{id} [put]
func (r *GoalsRouter) Put(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	body, ok := r.decode(w, req, id)
	if !ok {
		return
	}

	saved, err := r.client.Directory.SaveGoal(req.Context(), body.ToDomain(id))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteDocument(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.GoalResource(saved)))
}

// Delete handles DELETE /api/v1/goals/{id}.
//
//	@Summary	Delete goal
//	@Tags		goals
//	@Param		id	path	string	true	"Goal ID"
//	@Success	204
//	@Failure	401	{object}	jsonapi.Document
//	@Failure	404	{object}	jsonapi.Document
//	@Security	APIKeyAuth
//	@Router		/goals/{id} [delete]
func (r *GoalsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	if err := r.client.Directory.DeleteGoal(req.Context(), chi.URLParam(req, "id")); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Matches handles GET /api/v1/goals/{id}/matches?limit=N.
//
// Contacts whose embedding could not be computed are included with a score
// of 0 and available=false. A 503 means the goal itself could not be
// embedded.
//
//	@Summary		Match goal to contacts
//	@Description	Rank the owner's contacts by similarity to the goal
//	@Tags			matches
//	@Produce		json
//	@Param			id		path		string	true	"Goal ID"
//	@Param			limit	query		int		false	"Return at most this many matches (default: all)"
//	@Success		200		{object}	jsonapi.Document{data=[]jsonapi.Resource}
//	@Failure		400		{object}	jsonapi.Document
//	@Failure		404		{object}	jsonapi.Document
//	@Failure		503		{object}	jsonapi.Document
//	@Router			/goals/{id}/matches [get]
func (r *GoalsRouter) Matches(w http.ResponseWriter, req *http.Request) {
	goalID := chi.URLParam(req, "id")

	var opts []service.MatchingOption
	if s := req.URL.Query().Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			middleware.WriteError(w, req, middleware.BadRequest("limit must be a non-negative integer", err), r.logger)
			return
		}
		opts = append(opts, service.WithLimit(limit))
	}

	matches, err := r.client.Matching.MatchGoal(req.Context(), goalID, opts...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	unavailable := 0
	for _, m := range matches {
		if !m.Available {
			unavailable++
		}
	}

	doc := jsonapi.NewListResponse(r.serializer.MatchResources(matches))
	doc.Meta = &jsonapi.Meta{
		"goal_id":         goalID,
		"embedding_model": r.client.EmbeddingModel(),
		"returned":        len(matches),
		"unavailable":     unavailable,
	}
	middleware.WriteDocument(w, http.StatusOK, doc)
}

func (r *GoalsRouter) decode(w http.ResponseWriter, req *http.Request, pathID string) (dto.GoalRequest, bool) {
	var body dto.GoalRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.BadRequest("invalid JSON body", err), r.logger)
		return dto.GoalRequest{}, false
	}
	if err := body.Validate(pathID); err != nil {
		middleware.WriteError(w, req, middleware.BadRequest(err.Error(), nil), r.logger)
		return dto.GoalRequest{}, false
	}
	return body, true
}

package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/helixml/affinity"
	"github.com/helixml/affinity/infrastructure/api/jsonapi"
	"github.com/helixml/affinity/infrastructure/api/middleware"
	"github.com/helixml/affinity/infrastructure/api/v1/dto"
)

// ContactsRouter handles contact endpoints.
type ContactsRouter struct {
	client     *affinity.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewContactsRouter creates a new ContactsRouter.
func NewContactsRouter(client *affinity.Client) *ContactsRouter {
	return &ContactsRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for contact endpoints.
func (r *ContactsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/", r.Create)
	router.Get("/{id}", r.Get)
	router.Put("/{id}", r.Put)
	router.Delete("/{id}", r.Delete)

	return router
}

// List handles GET /api/v1/contacts?owner_id=...
//
//	@Summary		List contacts
//	@Description	List one owner's contacts, oldest first
//	@Tags			contacts
//	@Produce		json
//	@Param			owner_id	query		string	true	"Owner ID"
//	@Param			page		query		int		false	"Page number (default: 1)"
//	@Param			page_size	query		int		false	"Results per page (default: 20, max: 100)"
//	@Success		200			{object}	jsonapi.Document{data=[]jsonapi.Resource}
//	@Failure		400			{object}	jsonapi.Document
//	@Router			/contacts [get]
func (r *ContactsRouter) List(w http.ResponseWriter, req *http.Request) {
	ownerID := req.URL.Query().Get("owner_id")
	if ownerID == "" {
		middleware.WriteError(w, req, middleware.BadRequest("owner_id query parameter is required", nil), r.logger)
		return
	}

	contacts, err := r.client.Directory.Contacts(req.Context(), ownerID)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	page, meta, links := Paginate(req, contacts)
	doc := jsonapi.NewListResponse(r.serializer.ContactResources(page))
	doc.Meta = meta
	doc.Links = links
	middleware.WriteDocument(w, http.StatusOK, doc)
}

// Get handles GET /api/v1/contacts/{id}.
//
//	@Summary	Get contact
//	@Tags		contacts
//	@Produce	json
//	@Param		id	path		string	true	"Contact ID"
//	@Success	200	{object}	jsonapi.Document{data=jsonapi.Resource}
//	@Failure	404	{object}	jsonapi.Document
//	@Router		/contacts/{id} [get]
func (r *ContactsRouter) Get(w http.ResponseWriter, req *http.Request) {
	c, err := r.client.Directory.Contact(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteDocument(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.ContactResource(c)))
}

// Create handles POST /api/v1/contacts.
//
//	@Summary	Create contact
//	@Tags		contacts
//	@Accept		json
//	@Produce	json
//	@Param		body	body		dto.ContactRequest	true	"Contact"
//	@Success	201		{object}	jsonapi.Document{data=jsonapi.Resource}
//	@Failure	400		{object}	jsonapi.Document
//	@Failure	401		{object}	jsonapi.Document
//	@Security	APIKeyAuth
//	@Router		/contacts [post]
func (r *ContactsRouter) Create(w http.ResponseWriter, req *http.Request) {
	body, ok := r.decode(w, req, "")
	if !ok {
		return
	}

	id := body.Data.ID
	if id == "" {
		id = uuid.NewString()
	}
	saved, err := r.client.Directory.SaveContact(req.Context(), body.ToDomain(id))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.Header().Set("Location", strings.TrimSuffix(req.URL.Path, "/")+"/"+saved.ID())
	middleware.WriteDocument(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.ContactResource(saved)))
}

// Put handles PUT /api/v1/contacts/{id}, creating or replacing the contact.
//
//	@Summary	Create or replace contact
//	@Tags		contacts
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Contact ID"
//	@Param		body	body		dto.ContactRequest	true	"Contact"
//	@Success	200		{object}	jsonapi.Document{data=jsonapi.Resource}
//	@Failure	400		{object}	jsonapi.Document
//	@Failure	401		{object}	jsonapi.Document
//	@Security	APIKeyAuth
//	@Router		/contacts/{id} [put]
func (r *ContactsRouter) Put(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	body, ok := r.decode(w, req, id)
	if !ok {
		return
	}

	saved, err := r.client.Directory.SaveContact(req.Context(), body.ToDomain(id))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteDocument(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.ContactResource(saved)))
}

// Delete handles DELETE /api/v1/contacts/{id}.
//
//	@Summary	Delete contact
//	@Tags		contacts
//	@Param		id	path	string	true	"Contact ID"
//	@Success	204
//	@Failure	401	{object}	jsonapi.Document
//	@Failure	404	{object}	jsonapi.Document
//	@Security	APIKeyAuth
//	@Router		/contacts/{id} [delete]
func (r *ContactsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	if err := r.client.Directory.DeleteContact(req.Context(), chi.URLParam(req, "id")); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *ContactsRouter) decode(w http.ResponseWriter, req *http.Request, pathID string) (dto.ContactRequest, bool) {
	var body dto.ContactRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.BadRequest("invalid JSON body", err), r.logger)
		return dto.ContactRequest{}, false
	}
	if err := body.Validate(pathID); err != nil {
		middleware.WriteError(w, req, middleware.BadRequest(err.Error(), nil), r.logger)
		return dto.ContactRequest{}, false
	}
	return body, true
}

package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	authhttp "github.com/myhoard/backend/internal/auth/http"
	"github.com/myhoard/backend/internal/collection/domain"
	"github.com/myhoard/backend/internal/collection/service"
	commonerrors "github.com/myhoard/backend/internal/common/errors"
	commonhttp "github.com/myhoard/backend/internal/common/http"
	"github.com/myhoard/backend/internal/common/logger"
)

type collectionRequest struct {
	Name        string   `json:"name" validate:"required,max=128"`
	Description string   `json:"description" validate:"max=1024"`
	Public      bool     `json:"public"`
	Tags        []string `json:"tags" validate:"dive,max=64"`
}

type geoPoint struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type itemRequest struct {
	Name        string    `json:"name" validate:"required,max=128"`
	Description string    `json:"description" validate:"max=1024"`
	Location    *geoPoint `json:"location"`
}

type collectionResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Owner        string    `json:"owner"`
	Public       bool      `json:"public"`
	Tags         []string  `json:"tags"`
	CreatedDate  time.Time `json:"created_date"`
	ModifiedDate time.Time `json:"modified_date"`
}

type itemResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Location     *geoPoint `json:"location"`
	Collection   string    `json:"collection"`
	Owner        string    `json:"owner"`
	CreatedDate  time.Time `json:"created_date"`
	ModifiedDate time.Time `json:"modified_date"`
}

type Handler struct {
	collections *service.CollectionService
	validate    *validator.Validate
	errors      *commonhttp.ErrorHandler
	log         *logger.Logger
}

func NewHandler(collections *service.CollectionService, log *logger.Logger) *Handler {
	return &Handler{
		collections: collections,
		validate:    validator.New(),
		errors:      commonhttp.NewErrorHandler(log),
		log:         log,
	}
}

// Register wires the collection routes onto mux. Every handler here expects
// to run behind RequireAuth, which binds the caller's principal into the
// request context.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/collections", h.collectionsRoot)
	mux.HandleFunc("/api/collections/", h.collectionSubtree)
	mux.HandleFunc("/api/items/", h.itemByID)
}

func (h *Handler) collectionsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listCollections(w, r)
	case http.MethodPost:
		h.createCollection(w, r)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

// collectionSubtree dispatches /api/collections/{id} and
// /api/collections/{id}/items.
func (h *Handler) collectionSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/collections/"), "/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		h.collectionByID(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "items":
		h.collectionItems(w, r, parts[0])
	default:
		h.errors.HandleError(w, r, commonerrors.ErrCollectionNotFound)
	}
}

func (h *Handler) collectionByID(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := authhttp.PrincipalFromContext(r.Context())
	if !ok {
		h.errors.HandleError(w, r, commonerrors.ErrMissingAuthorization)
		return
	}

	switch r.Method {
	case http.MethodGet:
		collection, err := h.collections.GetCollection(r.Context(), principal.UserID, id)
		if err != nil {
			h.errors.HandleError(w, r, err)
			return
		}
		commonhttp.WriteJSON(w, http.StatusOK, toCollectionResponse(collection))

	case http.MethodPut:
		req, ok := h.decodeCollection(w, r)
		if !ok {
			return
		}
		collection, err := h.collections.UpdateCollection(r.Context(), principal.UserID, id, service.CollectionInput{
			Name:        req.Name,
			Description: req.Description,
			Public:      req.Public,
			Tags:        req.Tags,
		})
		if err != nil {
			h.errors.HandleError(w, r, err)
			return
		}
		commonhttp.WriteJSON(w, http.StatusOK, toCollectionResponse(collection))

	case http.MethodDelete:
		if err := h.collections.DeleteCollection(r.Context(), principal.UserID, id); err != nil {
			h.errors.HandleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

func (h *Handler) listCollections(w http.ResponseWriter, r *http.Request) {
	principal, ok := authhttp.PrincipalFromContext(r.Context())
	if !ok {
		h.errors.HandleError(w, r, commonerrors.ErrMissingAuthorization)
		return
	}

	collections, err := h.collections.ListCollections(r.Context(), principal.UserID, r.URL.Query())
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	out := make([]collectionResponse, 0, len(collections))
	for _, collection := range collections {
		out = append(out, toCollectionResponse(collection))
	}
	commonhttp.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) createCollection(w http.ResponseWriter, r *http.Request) {
	principal, ok := authhttp.PrincipalFromContext(r.Context())
	if !ok {
		h.errors.HandleError(w, r, commonerrors.ErrMissingAuthorization)
		return
	}

	req, ok := h.decodeCollection(w, r)
	if !ok {
		return
	}

	collection, err := h.collections.CreateCollection(r.Context(), principal.UserID, service.CollectionInput{
		Name:        req.Name,
		Description: req.Description,
		Public:      req.Public,
		Tags:        req.Tags,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, toCollectionResponse(collection))
}

func (h *Handler) collectionItems(w http.ResponseWriter, r *http.Request, collectionID string) {
	principal, ok := authhttp.PrincipalFromContext(r.Context())
	if !ok {
		h.errors.HandleError(w, r, commonerrors.ErrMissingAuthorization)
		return
	}

	switch r.Method {
	case http.MethodGet:
		items, err := h.collections.ListItems(r.Context(), principal.UserID, collectionID, r.URL.Query())
		if err != nil {
			h.errors.HandleError(w, r, err)
			return
		}
		out := make([]itemResponse, 0, len(items))
		for _, item := range items {
			out = append(out, toItemResponse(item))
		}
		commonhttp.WriteJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req itemRequest
		if err := commonhttp.DecodeJSON(r, &req); err != nil {
			h.log.Warnf("create item failed: invalid json: %v", err)
			commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
			return
		}
		if err := h.validate.Struct(req); err != nil {
			h.errors.HandleError(w, r, commonerrors.ErrValidationFailed.WithDetails(validationDetails(err)))
			return
		}

		var location *domain.GeoPoint
		if req.Location != nil {
			location = &domain.GeoPoint{Lat: req.Location.Lat, Lng: req.Location.Lng}
		}

		item, err := h.collections.CreateItem(r.Context(), principal.UserID, collectionID, service.ItemInput{
			Name:        req.Name,
			Description: req.Description,
			Location:    location,
		})
		if err != nil {
			h.errors.HandleError(w, r, err)
			return
		}
		commonhttp.WriteJSON(w, http.StatusCreated, toItemResponse(item))

	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

func (h *Handler) itemByID(w http.ResponseWriter, r *http.Request) {
	principal, ok := authhttp.PrincipalFromContext(r.Context())
	if !ok {
		h.errors.HandleError(w, r, commonerrors.ErrMissingAuthorization)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/items/"), "/")
	if id == "" || strings.Contains(id, "/") {
		h.errors.HandleError(w, r, commonerrors.ErrItemNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		item, err := h.collections.GetItem(r.Context(), principal.UserID, id)
		if err != nil {
			h.errors.HandleError(w, r, err)
			return
		}
		commonhttp.WriteJSON(w, http.StatusOK, toItemResponse(item))

	case http.MethodPut:
		var req itemRequest
		if err := commonhttp.DecodeJSON(r, &req); err != nil {
			h.log.Warnf("update item failed: invalid json: %v", err)
			commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
			return
		}
		if err := h.validate.Struct(req); err != nil {
			h.errors.HandleError(w, r, commonerrors.ErrValidationFailed.WithDetails(validationDetails(err)))
			return
		}

		var location *domain.GeoPoint
		if req.Location != nil {
			location = &domain.GeoPoint{Lat: req.Location.Lat, Lng: req.Location.Lng}
		}

		item, err := h.collections.UpdateItem(r.Context(), principal.UserID, id, service.ItemInput{
			Name:        req.Name,
			Description: req.Description,
			Location:    location,
		})
		if err != nil {
			h.errors.HandleError(w, r, err)
			return
		}
		commonhttp.WriteJSON(w, http.StatusOK, toItemResponse(item))

	case http.MethodDelete:
		if err := h.collections.DeleteItem(r.Context(), principal.UserID, id); err != nil {
			h.errors.HandleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

func (h *Handler) decodeCollection(w http.ResponseWriter, r *http.Request) (collectionRequest, bool) {
	var req collectionRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("collection request failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return collectionRequest{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		h.errors.HandleError(w, r, commonerrors.ErrValidationFailed.WithDetails(validationDetails(err)))
		return collectionRequest{}, false
	}
	return req, true
}

func toCollectionResponse(collection domain.Collection) collectionResponse {
	tags := collection.Tags
	if tags == nil {
		tags = []string{}
	}
	return collectionResponse{
		ID:           collection.ID,
		Name:         collection.Name,
		Description:  collection.Description,
		Owner:        collection.Owner,
		Public:       collection.Public,
		Tags:         tags,
		CreatedDate:  collection.CreatedDate,
		ModifiedDate: collection.ModifiedDate,
	}
}

func toItemResponse(item domain.Item) itemResponse {
	var location *geoPoint
	if item.Location != nil {
		location = &geoPoint{Lat: item.Location.Lat, Lng: item.Location.Lng}
	}
	return itemResponse{
		ID:           item.ID,
		Name:         item.Name,
		Description:  item.Description,
		Location:     location,
		Collection:   item.Collection,
		Owner:        item.Owner,
		CreatedDate:  item.CreatedDate,
		ModifiedDate: item.ModifiedDate,
	}
}

func validationDetails(err error) map[string]any {
	details := map[string]any{}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			details[fieldErr.Field()] = fieldErr.Tag()
		}
	}
	return details
}

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jobhunt-app/jobhunt/internal/jsonapi"
	"github.com/jobhunt-app/jobhunt/internal/resource"
	"github.com/jobhunt-app/jobhunt/internal/store"
	"github.com/jobhunt-app/jobhunt/internal/web/response"
)

// Handlers implements the generic resource operations. One instance serves
// every registered type; the descriptor is bound per route.
type Handlers struct {
	registry *resource.Registry
	store    *store.Store
	logger   *zap.Logger
}

// NewHandlers builds the generic handler set.
func NewHandlers(registry *resource.Registry, st *store.Store, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{registry: registry, store: st, logger: logger}
}

func (h *Handlers) serializer(desc *resource.Descriptor) *jsonapi.Serializer {
	return jsonapi.NewSerializer(desc, h.registry, h.store, h.logger)
}

// List serves GET /<plural>: a paginated collection with optional includes.
func (h *Handlers) List(desc *resource.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		page := ParsePage(r.URL.Query())
		entities, err := h.store.List(ctx, desc, page.Limit(), page.Offset())
		if err != nil {
			h.serverError(w, r, err)
			return
		}

		ser := h.serializer(desc)
		data := make([]*jsonapi.Resource, 0, len(entities))
		for _, e := range entities {
			data = append(data, ser.ToResource(ctx, e, nil))
		}

		doc := &jsonapi.Document{Data: data}
		if includes := ParseIncludes(r.URL.Query()); len(includes) > 0 {
			inc := jsonapi.NewIncluder(h.registry, h.store, h.logger)
			doc.Included = inc.Build(ctx, desc, entities, includes)
		}
		h.write(w, r, http.StatusOK, doc)
	}
}

// Retrieve serves GET /<plural>/{id}.
func (h *Handlers) Retrieve(desc *resource.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		entity, ok := h.load(w, r, desc)
		if !ok {
			return
		}

		doc := &jsonapi.Document{Data: h.serializer(desc).ToResource(ctx, entity, nil)}
		if includes := ParseIncludes(r.URL.Query()); len(includes) > 0 {
			inc := jsonapi.NewIncluder(h.registry, h.store, h.logger)
			doc.Included = inc.Build(ctx, desc, []jsonapi.Entity{entity}, includes)
		}
		h.write(w, r, http.StatusOK, doc)
	}
}

// Create serves POST /<plural>.
func (h *Handlers) Create(desc *resource.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		values, ok := h.parseBody(w, r, desc)
		if !ok {
			return
		}

		entity, err := h.store.Insert(ctx, desc, values)
		if err != nil {
			if store.IsConstraintViolation(err) {
				response.Error(w, http.StatusBadRequest, err.Error())
				return
			}
			h.serverError(w, r, err)
			return
		}
		doc := &jsonapi.Document{Data: h.serializer(desc).ToResource(ctx, entity, nil)}
		h.write(w, r, http.StatusCreated, doc)
	}
}

// Update serves PUT and PATCH /<plural>/{id}. Both are partial: absent
// attributes are left untouched.
func (h *Handlers) Update(desc *resource.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, ok := pathID(r)
		if !ok {
			response.Error(w, http.StatusNotFound, "Not found")
			return
		}
		values, ok := h.parseBody(w, r, desc)
		if !ok {
			return
		}

		entity, err := h.store.Update(ctx, desc, id, values)
		if err != nil {
			switch {
			case store.IsNotFound(err):
				response.Error(w, http.StatusNotFound, "Not found")
			case store.IsConstraintViolation(err):
				response.Error(w, http.StatusBadRequest, err.Error())
			default:
				h.serverError(w, r, err)
			}
			return
		}
		doc := &jsonapi.Document{Data: h.serializer(desc).ToResource(ctx, entity, nil)}
		h.write(w, r, http.StatusOK, doc)
	}
}

// Destroy serves DELETE /<plural>/{id}. Destroy is idempotent: deleting an
// absent record still yields 204.
func (h *Handlers) Destroy(desc *resource.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			response.NoContent(w)
			return
		}
		if err := h.store.Delete(r.Context(), desc, id); err != nil {
			h.serverError(w, r, err)
			return
		}
		response.NoContent(w)
	}
}

// Relationships serves GET /<plural>/{id}/relationships/{rel}: bare linkage
// without attributes.
func (h *Handlers) Relationships(desc *resource.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		entity, ok := h.load(w, r, desc)
		if !ok {
			return
		}

		relName := chi.URLParam(r, "rel")
		data, ok := h.serializer(desc).RelationshipLinkage(ctx, entity, relName)
		if !ok {
			response.Error(w, http.StatusNotFound, "Relationship not found")
			return
		}
		h.write(w, r, http.StatusOK, &jsonapi.Document{Data: data})
	}
}

// Related serves GET /<plural>/{id}/{rel}: the full related resources,
// rendered under this entity's parent context so join-scoped attributes
// appear.
func (h *Handlers) Related(desc *resource.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		entity, ok := h.load(w, r, desc)
		if !ok {
			return
		}

		relName := resource.Normalize(chi.URLParam(r, "rel"), desc.Relationships)
		rel, declared := desc.Relationships[relName]
		if !declared {
			response.Error(w, http.StatusNotFound, "Relationship not found")
			return
		}

		targetType, targets := h.serializer(desc).GetRelated(ctx, entity, relName)
		targetDesc, found := h.registry.Get(targetType)
		if !found {
			response.Error(w, http.StatusNotFound, "Relationship not found")
			return
		}

		pctx := &jsonapi.ParentContext{
			Type:         desc.TypeName,
			ID:           jsonapi.EntityID(entity),
			Relationship: relName,
		}
		targetSer := h.serializer(targetDesc)

		var data interface{}
		if rel.ToMany() {
			resources := make([]*jsonapi.Resource, 0, len(targets))
			for _, t := range targets {
				resources = append(resources, targetSer.ToResource(ctx, t, pctx))
			}
			data = resources
		} else if len(targets) > 0 {
			data = targetSer.ToResource(ctx, targets[0], pctx)
		}
		h.write(w, r, http.StatusOK, &jsonapi.Document{Data: data})
	}
}

// Healthcheck reports liveness plus database reachability.
func (h *Handlers) Healthcheck(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("healthcheck database ping failed", zap.Error(err))
		response.Error(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	_ = response.Write(w, http.StatusOK, map[string]string{"status": "ok"})
}

// load fetches the entity addressed by the {id} path parameter, writing the
// 404 itself when it cannot.
func (h *Handlers) load(w http.ResponseWriter, r *http.Request, desc *resource.Descriptor) (jsonapi.Entity, bool) {
	id, ok := pathID(r)
	if !ok {
		response.Error(w, http.StatusNotFound, "Not found")
		return nil, false
	}
	entity, err := h.store.Get(r.Context(), desc, id)
	if err != nil {
		if store.IsNotFound(err) {
			response.Error(w, http.StatusNotFound, "Not found")
		} else {
			h.serverError(w, r, err)
		}
		return nil, false
	}
	return entity, true
}

// parseBody decodes and validates a write payload, writing the 400 itself
// on failure.
func (h *Handlers) parseBody(w http.ResponseWriter, r *http.Request, desc *resource.Descriptor) (map[string]interface{}, bool) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return nil, false
	}
	values, err := jsonapi.ParsePayload(desc, payload)
	if err != nil {
		var verr *jsonapi.ValidationError
		if errors.As(err, &verr) {
			response.Error(w, http.StatusBadRequest, verr.Error())
			return nil, false
		}
		h.serverError(w, r, err)
		return nil, false
	}
	return values, true
}

func (h *Handlers) write(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	if err := response.Write(w, status, payload); err != nil {
		h.logger.Error("response write failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
}

func (h *Handlers) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	response.Error(w, http.StatusInternalServerError, "Internal server error")
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

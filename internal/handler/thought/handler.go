package thought

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	thoughtService "github.com/zhouzirui/happy-thoughts/backend/internal/service/thought"
	"github.com/zhouzirui/happy-thoughts/backend/pkg/utils"
)

// maxBodyBytes matches the usual JSON body-parser limit.
const maxBodyBytes = 100 << 10

// Handler serves the thought CRUD routes.
type Handler struct {
	svc    *thoughtService.Service
	logger *zap.Logger
}

// New creates a thought handler.
func New(svc *thoughtService.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the thought routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/thoughts", h.handleList)
	r.Post("/thoughts", h.handleCreate)
	r.Post("/thoughts/{id}/like", h.handleLike)
	r.Delete("/thoughts/{id}", h.handleDelete)
	r.Patch("/thoughts/{id}", h.handlePatch)
}

type messagePayload struct {
	Message string `json:"message"`
}

// handleList returns a bare array, not an envelope.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	thoughts, err := h.svc.List(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, thoughts)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeMessage(w, r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	created, err := h.svc.Create(r.Context(), payload.Message)
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondEnvelope(w, http.StatusCreated, created, true)
}

// handleLike answers 200 with a null response when the id matches nothing.
func (h *Handler) handleLike(w http.ResponseWriter, r *http.Request) {
	liked, err := h.svc.Like(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if liked == nil {
		utils.RespondEnvelope(w, http.StatusOK, nil, true)
		return
	}
	utils.RespondEnvelope(w, http.StatusOK, liked, true)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondEnvelope(w, http.StatusOK, deleted, true)
}

func (h *Handler) handlePatch(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeMessage(w, r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	updated, err := h.svc.UpdateMessage(r.Context(), chi.URLParam(r, "id"), payload.Message)
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondEnvelope(w, http.StatusOK, updated, true)
}

// decodeMessage reads {"message": ...}. An empty body counts as {}.
func decodeMessage(w http.ResponseWriter, r *http.Request) (messagePayload, error) {
	var payload messagePayload
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	err := json.NewDecoder(r.Body).Decode(&payload)
	if err == nil || errors.Is(err, io.EOF) {
		return payload, nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return payload, thoughtService.MalformedInput("request body too large", err)
	}
	return payload, thoughtService.MalformedInput("invalid request body", err)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	kind := thoughtService.KindOf(err)
	if kind == thoughtService.KindStorageFailed {
		h.logger.Warn("request failed", zap.Error(err))
	}

	var svcErr *thoughtService.Error
	if !errors.As(err, &svcErr) {
		svcErr = thoughtService.StorageFailed(err)
	}
	utils.RespondEnvelope(w, statusFor(kind), svcErr, false)
}

func statusFor(kind thoughtService.Kind) int {
	switch kind {
	case thoughtService.KindNotFound:
		return http.StatusNotFound
	default:
		// validation, malformed input and driver failures all answer 400
		return http.StatusBadRequest
	}
}

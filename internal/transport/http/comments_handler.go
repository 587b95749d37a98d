package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"purchdash/internal/comments"
	apierrors "purchdash/internal/errors"
	"purchdash/internal/websocket"
	"purchdash/pkg/contracts/domain"
)

// CommentsHandler serves the persisted annotations.
type CommentsHandler struct {
	store        *comments.Store
	hub          *websocket.Hub
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewCommentsHandler wires the handler over the comment store.
func NewCommentsHandler(store *comments.Store, hub *websocket.Hub, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *CommentsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentsHandler{
		store:        store,
		hub:          hub,
		logger:       logger.With(slog.String("component", "comments_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the comment routes.
func (h *CommentsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.List)
	r.Post("/", h.Add)
	return r
}

// List returns the comments on one subject in insertion order.
// Subject id and type come in as query parameters.
func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	subjectID := r.URL.Query().Get("subject_id")
	subjectType := domain.SubjectType(r.URL.Query().Get("subject_type"))
	if subjectID == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("subject_id", "subject_id is required"))
		return
	}
	if subjectType != domain.SubjectPurchaseOrder && subjectType != domain.SubjectContract {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("subject_type", "subject_type must be PurchaseOrder or Contract"))
		return
	}

	list, err := h.store.List(r.Context(), subjectID, subjectType)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"subject_id":   subjectID,
		"subject_type": subjectType,
		"comments":     list,
	})
}

// Add persists one comment and notifies open sessions.
func (h *CommentsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var c domain.Comment
	if err := render.DecodeJSON(r.Body, &c); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	saved, err := h.store.Add(r.Context(), c)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("comment", err.Error()))
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.TypeCommentAdded, map[string]string{
			"subject_id":   saved.SubjectID,
			"subject_type": string(saved.SubjectType),
		})
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, saved)
}

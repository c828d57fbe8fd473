package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/user/classifier-service/internal/delivery/http/request"
	"github.com/user/classifier-service/internal/delivery/http/response"
	"github.com/user/classifier-service/internal/entity"
	"github.com/user/classifier-service/internal/repository"
	"github.com/user/classifier-service/internal/usecase"
)

// Inspector is the read-only view over persisted classification data.
type Inspector interface {
	Image(ctx context.Context, id int64) (*entity.Image, error)
	Orphans(ctx context.Context, limit int) ([]*entity.Object, error)
}

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	submitter usecase.JobSubmitter
	inspector Inspector
	state     *usecase.RunState
	queue     repository.QueueRepository
	queueName string
	checks    map[string]HealthCheck
}

func NewHandler(
	submitter usecase.JobSubmitter,
	inspector Inspector,
	state *usecase.RunState,
	queue repository.QueueRepository,
	queueName string,
	checks map[string]HealthCheck,
) *Handler {
	return &Handler{
		submitter: submitter,
		inspector: inspector,
		state:     state,
		queue:     queue,
		queueName: queueName,
		checks:    checks,
	}
}

func (h *Handler) HandleSubmitClassify(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := h.submitter.Submit(r.Context(), &req.Product, req.Force)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidJob):
			h.writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, usecase.ErrProductRecentlySubmitted):
			h.writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			slog.Error("Failed to submit product", "product_id", req.Product.ProductID, "error", err)
			h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusAccepted, response.SubmitClassifyResponse{
		Status:    "success",
		Message:   "Product submitted for classification",
		ProductID: req.Product.ProductID,
	})
}

func (h *Handler) HandleGetSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	status, err := h.submitter.Status(r.Context(), productID)
	if err != nil {
		slog.Error("Failed to get submission status", "product_id", productID, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if status == "not_found" {
		h.writeJSONError(w, "No recent submission for the given product", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, response.SubmissionStatusResponse{ProductID: productID, CurrentStatus: status})
}

func (h *Handler) HandleWorkerStatus(w http.ResponseWriter, r *http.Request) {
	resp := response.WorkerStatusResponse{
		WorkerID:    h.state.WorkerID,
		Namespace:   h.state.Namespace,
		VersionID:   h.state.VersionID,
		Heartbeat:   h.state.Alive(),
		Terminating: h.state.Terminating(),
	}
	if size, err := h.queue.Size(r.Context(), h.queueName); err == nil {
		resp.QueueLength = &size
	} else {
		slog.Warn("Failed to read intake queue length", "queue", h.queueName, "error", err)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleGetImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "imageID"), 10, 64)
	if err != nil || id <= 0 {
		h.writeJSONError(w, "Invalid image id", http.StatusBadRequest)
		return
	}

	img, err := h.inspector.Image(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.writeJSONError(w, "Image not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to load image", "image_id", id, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.ImageResponse{
		ID:          img.ID,
		ProductID:   img.ProductID,
		ProductName: img.ProductName,
		MainImage:   img.MainImage,
		ClassCode:   img.ClassCode,
		ObjectIDs:   img.ObjectIDs,
		VersionID:   img.VersionID,
		CreatedAt:   img.CreatedAt,
	})
}

func (h *Handler) HandleListOrphans(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.writeJSONError(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	objects, err := h.inspector.Orphans(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list orphaned objects", "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]response.OrphanResponse, 0, len(objects))
	for _, o := range objects {
		resp = append(resp, response.OrphanResponse{
			ID:         o.ID,
			ProductID:  o.ProductID,
			ClassCode:  o.ClassCode,
			StorageKey: o.StorageKey,
			VersionID:  o.VersionID,
			CreatedAt:  o.CreatedAt,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			healthStatus[name] = "unhealthy"
			healthy = false
			slog.Error("Health check failed", "service", name, "error", err)
			continue
		}
		healthStatus[name] = "healthy"
	}

	if !healthy {
		h.writeJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	h.writeJSON(w, http.StatusOK, healthStatus)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

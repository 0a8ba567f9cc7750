package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/prospect"
)

// Service is the part of the prospect service the HTTP layer depends on.
type Service interface {
	GetHexagon(ctx context.Context, hexagonID string) (*prospect.Payload, error)
	FetchHexagon(ctx context.Context, hexagonID string) (*prospect.Payload, *prospect.FetchResult, error)
	UpdateStatus(ctx context.Context, placeID, status string) (*model.Business, error)
	ExistingHexagons(ctx context.Context) (fetched []string, empty []string, err error)
	Compare(ctx context.Context, placeID string, topN int) (*prospect.Comparison, error)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExistingHexagons(w http.ResponseWriter, r *http.Request) {
	fetched, empty, err := s.svc.ExistingHexagons(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch existing hexagons", err)
		return
	}
	if fetched == nil {
		fetched = []string{}
	}
	if empty == nil {
		empty = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{
		"hexagonIds":           fetched,
		"noBusinessHexagonIds": empty,
	})
}

func (s *Server) handleGetHexagonBusinesses(w http.ResponseWriter, r *http.Request) {
	hexagonID := chi.URLParam(r, "hexagonID")

	payload, err := s.svc.GetHexagon(r.Context(), hexagonID)
	if err != nil {
		if isInvalidInput(err) {
			writeError(w, http.StatusBadRequest, "invalid hexagon id", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch hexagon businesses", err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleFetchHexagonBusinesses(w http.ResponseWriter, r *http.Request) {
	hexagonID := chi.URLParam(r, "hexagonID")

	payload, result, err := s.svc.FetchHexagon(r.Context(), hexagonID)
	if err != nil {
		if isInvalidInput(err) {
			writeError(w, http.StatusBadRequest, "invalid hexagon id", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create hexagon businesses", err)
		return
	}

	resp := struct {
		*prospect.Payload
		Fetch *prospect.FetchResult `json:"fetch"`
	}{payload, result}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeID")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required", nil)
		return
	}

	business, err := s.svc.UpdateStatus(r.Context(), placeID, req.Status)
	if err != nil {
		if _, parseErr := model.ParseStatus(req.Status); parseErr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":         "Invalid status",
				"validStatuses": model.Statuses(),
			})
			return
		}
		writeError(w, http.StatusNotFound, "business not found", err)
		return
	}
	if business == nil {
		writeError(w, http.StatusNotFound, "business not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, business)
}

func (s *Server) handleCompetitors(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeID")

	topN := 0
	if v := r.URL.Query().Get("n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "n must be a non-negative integer", err)
			return
		}
		topN = n
	}

	comparison, err := s.svc.Compare(r.Context(), placeID, topN)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, "business not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to compare competitors", err)
		return
	}
	writeJSON(w, http.StatusOK, comparison)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		zap.L().Warn("request failed", zap.Int("status", status), zap.String("msg", msg), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// isInvalidInput classifies validation errors from the service layer.
func isInvalidInput(err error) bool {
	return err != nil && strings.Contains(err.Error(), "invalid")
}

// requestLogger logs each request with zap after it completes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

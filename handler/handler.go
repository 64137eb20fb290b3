// Package handler provides the HTTP handlers for the transfer service.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stevemurr/transfer-store/store"
	"github.com/stevemurr/transfer-store/transfer"
)

// maxBodyBytes bounds request bodies; a transfer record is tiny.
const maxBodyBytes = 1 << 20

// Handler holds the server dependencies and registers routes.
type Handler struct {
	store  store.Store
	log    *zap.Logger
	router chi.Router
}

// New creates a Handler and wires up all routes. A nil logger discards output.
func New(s store.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{store: s, log: logger, router: chi.NewRouter()}
	h.routes()
	return h
}

// ServeHTTP makes Handler an http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	r := h.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.log))
	r.Use(prometheusMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Health / status
	r.Get("/", h.root)
	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/transfers", func(r chi.Router) {
		r.Get("/", h.listTransfers)
		r.Post("/", h.createTransfer)
		r.Put("/", h.updateTransfer)
		r.Delete("/", h.deleteTransfer)
	})
}

// ---------- helpers ----------

// transferRequest is the body of every mutating call. Both fields stay
// untyped so validation can report the caller's mistakes per field.
type transferRequest struct {
	TransferID any `json:"transferId"`
	Transfer   any `json:"transfer"`
}

type errorResponse struct {
	Detail string   `json:"detail"`
	Fields []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Detail: msg})
}

// readRequest decodes the body. An empty body decodes to a zero request
// so the caller reports the missing id instead of a parse failure.
func readRequest(w http.ResponseWriter, r *http.Request) (transferRequest, error) {
	defer r.Body.Close()
	var req transferRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if errors.Is(err, io.EOF) {
		return transferRequest{}, nil
	}
	return req, err
}

// fail maps an operation error to a response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *transfer.ValidationError
	switch {
	case errors.As(err, &verr):
		TransferOperations.WithLabelValues(op, "invalid").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, store.ErrAlreadyExists):
		TransferOperations.WithLabelValues(op, "conflict").Inc()
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotFound):
		// Deliberate change: an unknown id on update used to surface as 500.
		TransferOperations.WithLabelValues(op, "not_found").Inc()
		writeError(w, http.StatusNotFound, err.Error())
	default:
		TransferOperations.WithLabelValues(op, "error").Inc()
		h.log.Error("transfer operation failed",
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) ok(w http.ResponseWriter, op string, status int, v any) {
	TransferOperations.WithLabelValues(op, "ok").Inc()
	writeJSON(w, status, v)
}

// ---------- status endpoints ----------

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "Transfer Store",
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ---------- transfers ----------

func (h *Handler) listTransfers(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.Read(r.Context())
	if err != nil {
		h.fail(w, r, "list", err)
		return
	}
	h.ok(w, "list", http.StatusOK, all)
}

// createTransfer answers 201, 400, 409 or 500.
func (h *Handler) createTransfer(w http.ResponseWriter, r *http.Request) {
	id, rec, ok := h.readRecord(w, r, "add")
	if !ok {
		return
	}
	if err := h.store.Add(r.Context(), id, rec); err != nil {
		h.fail(w, r, "add", err)
		return
	}
	h.log.Info("transfer added", zap.String("id", id))
	h.ok(w, "add", http.StatusCreated, struct{}{})
}

// updateTransfer answers 200, 400, 404 or 500.
func (h *Handler) updateTransfer(w http.ResponseWriter, r *http.Request) {
	id, rec, ok := h.readRecord(w, r, "update")
	if !ok {
		return
	}
	if err := h.store.Update(r.Context(), id, rec); err != nil {
		h.fail(w, r, "update", err)
		return
	}
	h.log.Info("transfer updated", zap.String("id", id))
	h.ok(w, "update", http.StatusOK, struct{}{})
}

// deleteTransfer answers 200, 400 or 500. Unknown ids are not an error.
func (h *Handler) deleteTransfer(w http.ResponseWriter, r *http.Request) {
	req, err := readRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}
	if !transfer.Present(req.TransferID) {
		writeError(w, http.StatusBadRequest, "transferId is required")
		return
	}
	if err := transfer.ValidateID(req.TransferID); err != nil {
		h.fail(w, r, "delete", err)
		return
	}
	id := req.TransferID.(string)
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "delete", err)
		return
	}
	h.log.Info("transfer deleted", zap.String("id", id))
	h.ok(w, "delete", http.StatusOK, struct{}{})
}

// readRecord extracts and validates {transferId, transfer}. On failure
// it has already written the response.
func (h *Handler) readRecord(w http.ResponseWriter, r *http.Request, op string) (string, transfer.Transfer, bool) {
	req, err := readRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return "", transfer.Transfer{}, false
	}
	if !transfer.Present(req.TransferID) {
		writeError(w, http.StatusBadRequest, "transferId is required")
		return "", transfer.Transfer{}, false
	}
	if !transfer.Present(req.Transfer) {
		writeError(w, http.StatusBadRequest, "transfer is required")
		return "", transfer.Transfer{}, false
	}
	rec, err := transfer.Parse(req.Transfer, req.TransferID)
	if err != nil {
		h.fail(w, r, op, err)
		return "", transfer.Transfer{}, false
	}
	return req.TransferID.(string), rec, true
}

// Package api exposes the HTTP surface: query submission and lifecycle,
// dataset catalog reads, and health.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"aihub/internal/domain"
	"aihub/internal/service/dataset"
	"aihub/internal/service/query"
)

// Handler holds the services the HTTP layer dispatches into.
type Handler struct {
	query    *query.Service
	datasets *dataset.Service
}

// NewHandler creates an API handler.
func NewHandler(querySvc *query.Service, datasetSvc *dataset.Service) *Handler {
	return &Handler{query: querySvc, datasets: datasetSvc}
}

// SubmitQuery handles POST /v1/query. It returns 201 with the pending
// record; execution outcomes are observed through the record's status.
func (h *Handler) SubmitQuery(w http.ResponseWriter, r *http.Request) {
	principal, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		respondErrorStatus(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body submitQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondErrorStatus(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	format := domain.OutputFormat(body.OutputFormat)
	if body.OutputFormat == "" {
		format = domain.FormatJSON
	}

	rec, err := h.query.Submit(r.Context(), principal.Name, domain.QueryRequest{
		SQLText:      body.Query,
		DatasetIDs:   body.DatasetIDs,
		OutputFormat: format,
		Limit:        body.Limit,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toQueryRecordResponse(rec))
}

// GetQueryResult handles GET /v1/query/result/{id}.
func (h *Handler) GetQueryResult(w http.ResponseWriter, r *http.Request) {
	principal, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		respondErrorStatus(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rec, err := h.query.GetResult(r.Context(), principal.Name, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toQueryRecordResponse(rec))
}

// ListQueryResults handles GET /v1/query/results.
func (h *Handler) ListQueryResults(w http.ResponseWriter, r *http.Request) {
	principal, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		respondErrorStatus(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recs, total, err := h.query.ListHistory(r.Context(), principal.Name, pageFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	items := make([]queryRecordResponse, len(recs))
	for i := range recs {
		items[i] = toQueryRecordResponse(&recs[i])
	}
	respondJSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

// CancelQuery handles POST /v1/query/cancel/{id}. Canceling a terminal
// record is a no-op and returns the record unchanged.
func (h *Handler) CancelQuery(w http.ResponseWriter, r *http.Request) {
	principal, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		respondErrorStatus(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rec, err := h.query.Cancel(r.Context(), principal.Name, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toQueryRecordResponse(rec))
}

// ListDatasets handles GET /v1/datasets.
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	principal, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		respondErrorStatus(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	dss, total, err := h.datasets.List(r.Context(), principal.Name, pageFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	items := make([]datasetResponse, len(dss))
	for i := range dss {
		items[i] = toDatasetResponse(&dss[i])
	}
	respondJSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

// GetDataset handles GET /v1/datasets/{id}.
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	principal, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		respondErrorStatus(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ds, err := h.datasets.Get(r.Context(), principal.Name, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toDatasetResponse(ds))
}

// GetDatasetSchema handles GET /v1/datasets/{id}/schema.
func (h *Handler) GetDatasetSchema(w http.ResponseWriter, r *http.Request) {
	principal, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		respondErrorStatus(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	schema, err := h.datasets.GetSchema(r.Context(), principal.Name, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, schema)
}

// Healthz handles GET /healthz.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// pageFromRequest parses limit and offset query parameters; invalid or
// absent values fall back to the PageRequest defaults.
func pageFromRequest(r *http.Request) domain.PageRequest {
	var page domain.PageRequest
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page.MaxResults = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page.Skip = n
		}
	}
	return page
}

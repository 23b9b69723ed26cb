package httptransport

import (
	"context"
	"net/http"

	"stakepool/internal/app/settlement"
	"stakepool/internal/escrow"

	"github.com/go-chi/chi/v5"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type AdminHandlers struct {
	svc    *settlement.Service
	health HealthChecker
}

func NewAdminHandlers(svc *settlement.Service, health HealthChecker) *AdminHandlers {
	return &AdminHandlers{svc: svc, health: health}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.health.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "up"})
	}
}

// Ledger lists journal entries newest first, filtered by account, ref_type and ref_id.
func (h *AdminHandlers) Ledger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		q := r.URL.Query()
		f := escrow.EntryFilter{
			Account: escrow.Account(q.Get("account")),
			RefType: q.Get("ref_type"),
			RefID:   q.Get("ref_id"),
		}
		resp, err := h.svc.Ledger(r.Context(), f, limit, offset)
		writeResult(w, r, resp, err)
	}
}

func (h *AdminHandlers) TopUp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body settlement.TopUpInput
		if !decodeBody(w, r, &body) {
			return
		}
		resp, err := h.svc.TopUp(r.Context(), body)
		writeResult(w, r, resp, err)
	}
}

func (h *AdminHandlers) Balance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Balance(r.Context(), r.URL.Query().Get("address"), r.URL.Query().Get("token"))
		writeResult(w, r, resp, err)
	}
}

func (h *AdminHandlers) IssueAsset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body settlement.IssueAssetInput
		if !decodeBody(w, r, &body) {
			return
		}
		resp, err := h.svc.IssueAsset(r.Context(), body)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (h *AdminHandlers) Asset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Asset(r.Context(), chi.URLParam(r, "asset"))
		writeResult(w, r, resp, err)
	}
}

package httptransport

import (
	"context"
	"net/http"

	"stakepool/internal/app/settlement"

	"github.com/go-chi/chi/v5"
)

type CashGameHandlers struct {
	svc *settlement.Service
}

func NewCashGameHandlers(svc *settlement.Service) *CashGameHandlers {
	return &CashGameHandlers{svc: svc}
}

func (h *CashGameHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body settlement.CreateCashGameInput
		if !decodeBody(w, r, &body) {
			return
		}
		caller, _ := CallerFromContext(r.Context())
		resp, err := h.svc.CreateCashGame(r.Context(), caller, body)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func (h *CashGameHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.CashGame(r.Context(), chi.URLParam(r, "id"))
		writeResult(w, r, resp, err)
	}
}

func (h *CashGameHandlers) Join() http.HandlerFunc {
	return amountAction(h.svc.Join)
}

func (h *CashGameHandlers) AddChips() http.HandlerFunc {
	return amountAction(h.svc.AddChips)
}

func amountAction(fn func(ctx context.Context, id, caller string, in settlement.AmountInput) (*settlement.CashGameResponse, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body settlement.AmountInput
		if !decodeBody(w, r, &body) {
			return
		}
		caller, _ := CallerFromContext(r.Context())
		resp, err := fn(r.Context(), chi.URLParam(r, "id"), caller, body)
		writeResult(w, r, resp, err)
	}
}

func (h *CashGameHandlers) Eject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body settlement.EjectInput
		if !decodeBody(w, r, &body) {
			return
		}
		caller, _ := CallerFromContext(r.Context())
		resp, err := h.svc.EjectPlayers(r.Context(), chi.URLParam(r, "id"), caller, body)
		writeResult(w, r, resp, err)
	}
}

func (h *CashGameHandlers) Refund() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body settlement.RefundInput
		if !decodeBody(w, r, &body) {
			return
		}
		caller, _ := CallerFromContext(r.Context())
		resp, err := h.svc.RefundPlayer(r.Context(), chi.URLParam(r, "id"), caller, body)
		writeResult(w, r, resp, err)
	}
}

func (h *CashGameHandlers) Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body settlement.StatusInput
		if !decodeBody(w, r, &body) {
			return
		}
		caller, _ := CallerFromContext(r.Context())
		resp, err := h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), caller, body)
		writeResult(w, r, resp, err)
	}
}

func (h *CashGameHandlers) Hands() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body settlement.HandsInput
		if !decodeBody(w, r, &body) {
			return
		}
		caller, _ := CallerFromContext(r.Context())
		resp, err := h.svc.SettleHands(r.Context(), chi.URLParam(r, "id"), caller, body)
		writeResult(w, r, resp, err)
	}
}

func (h *CashGameHandlers) Close() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body settlement.CloseInput
		if r.ContentLength != 0 && !decodeBody(w, r, &body) {
			return
		}
		caller, _ := CallerFromContext(r.Context())
		resp, err := h.svc.CloseCashGame(r.Context(), chi.URLParam(r, "id"), caller, body)
		writeResult(w, r, resp, err)
	}
}

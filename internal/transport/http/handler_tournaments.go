package httptransport

import (
	"context"
	"net/http"
	"strconv"

	"stakepool/internal/app/settlement"

	"github.com/go-chi/chi/v5"
)

type TournamentHandlers struct {
	svc *settlement.Service
}

func NewTournamentHandlers(svc *settlement.Service) *TournamentHandlers {
	return &TournamentHandlers{svc: svc}
}

func (h *TournamentHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body settlement.CreateTournamentInput
		if !decodeBody(w, r, &body) {
			return
		}
		caller, _ := CallerFromContext(r.Context())
		resp, err := h.svc.CreateTournament(r.Context(), caller, body)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

// Get resolves {ref} as an id first, then as a slug.
func (h *TournamentHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Tournament(r.Context(), chi.URLParam(r, "ref"))
		writeResult(w, r, resp, err)
	}
}

func (h *TournamentHandlers) Register() http.HandlerFunc {
	return callerAction(h.svc.Register)
}

func (h *TournamentHandlers) Unregister() http.HandlerFunc {
	return callerAction(h.svc.Unregister)
}

func (h *TournamentHandlers) Start() http.HandlerFunc {
	return callerAction(h.svc.StartTournament)
}

func callerAction[T any](fn func(ctx context.Context, ref, caller string) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := CallerFromContext(r.Context())
		resp, err := fn(r.Context(), chi.URLParam(r, "ref"), caller)
		writeResult(w, r, resp, err)
	}
}

func bodyAction[In, Out any](fn func(ctx context.Context, ref, caller string, in In) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body In
		if r.ContentLength != 0 && !decodeBody(w, r, &body) {
			return
		}
		caller, _ := CallerFromContext(r.Context())
		resp, err := fn(r.Context(), chi.URLParam(r, "ref"), caller, body)
		writeResult(w, r, resp, err)
	}
}

func (h *TournamentHandlers) Registration() http.HandlerFunc {
	return callerAction(h.svc.FlipRegistration)
}

func (h *TournamentHandlers) Refund() http.HandlerFunc {
	return bodyAction(h.svc.Refund)
}

func (h *TournamentHandlers) Payouts() http.HandlerFunc {
	return bodyAction(h.svc.UpdatePayouts)
}

func (h *TournamentHandlers) PayoutTable() http.HandlerFunc {
	return bodyAction(h.svc.ApplyPayoutTable)
}

func (h *TournamentHandlers) Settle() http.HandlerFunc {
	return bodyAction(h.svc.SettlePlayer)
}

func (h *TournamentHandlers) AddPrize() http.HandlerFunc {
	return bodyAction(h.svc.AddPrize)
}

func (h *TournamentHandlers) Close() http.HandlerFunc {
	return bodyAction(h.svc.CloseTournament)
}

// PayoutSplit previews GET /api/payouts?players=N&pool=P.
func (h *TournamentHandlers) PayoutSplit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := strconv.Atoi(r.URL.Query().Get("players"))
		if err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		var pool int64
		if v := r.URL.Query().Get("pool"); v != "" {
			if pool, err = strconv.ParseInt(v, 10, 64); err != nil {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
				return
			}
		}
		resp, err := h.svc.Payouts(players, pool)
		writeResult(w, r, resp, err)
	}
}

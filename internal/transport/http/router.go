package httptransport

import (
	"expvar"
	"net/http"
	"sort"

	"stakepool/internal/app/settlement"
	"stakepool/internal/config"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func NewRouter(svc *settlement.Service, health HealthChecker, cfg config.ServerConfig) *chi.Mux {
	cashGames := NewCashGameHandlers(svc)
	tournaments := NewTournamentHandlers(svc)
	admin := NewAdminHandlers(svc, health)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", admin.Health())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/cash-games/{id}", cashGames.Get())
		r.Get("/tournaments/{ref}", tournaments.Get())
		r.Get("/payouts", tournaments.PayoutSplit())

		r.Group(func(r chi.Router) {
			r.Use(CallerMiddleware())
			r.Post("/cash-games", cashGames.Create())
			r.Post("/cash-games/{id}/join", cashGames.Join())
			r.Post("/cash-games/{id}/chips", cashGames.AddChips())
			r.Post("/cash-games/{id}/eject", cashGames.Eject())
			r.Post("/cash-games/{id}/refund", cashGames.Refund())
			r.Post("/cash-games/{id}/status", cashGames.Status())
			r.Post("/cash-games/{id}/hands", cashGames.Hands())
			r.Post("/cash-games/{id}/close", cashGames.Close())

			r.Post("/tournaments", tournaments.Create())
			r.Post("/tournaments/{ref}/register", tournaments.Register())
			r.Post("/tournaments/{ref}/unregister", tournaments.Unregister())
			r.Post("/tournaments/{ref}/refund", tournaments.Refund())
			r.Post("/tournaments/{ref}/start", tournaments.Start())
			r.Post("/tournaments/{ref}/registration", tournaments.Registration())
			r.Post("/tournaments/{ref}/payouts", tournaments.Payouts())
			r.Post("/tournaments/{ref}/payout-table", tournaments.PayoutTable())
			r.Post("/tournaments/{ref}/settle", tournaments.Settle())
			r.Post("/tournaments/{ref}/prizes", tournaments.AddPrize())
			r.Post("/tournaments/{ref}/close", tournaments.Close())
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Get("/ledger", admin.Ledger())
			r.Get("/balances", admin.Balance())
			r.Post("/topup", admin.TopUp())
			r.Post("/assets", admin.IssueAsset())
			r.Get("/assets/{asset}", admin.Asset())
			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	for _, rt := range routes {
		log.Debug().Str("method", rt.Method).Str("path", rt.Path).Msg("route_registered")
	}
	log.Info().Int("count", len(routes)).Msg("routes_registered")
}

package http

import (
	"net/http"

	"github.com/citadelx/marketplace/internal/application"
	"github.com/citadelx/marketplace/internal/ports"
	"github.com/go-chi/chi/v5"
)

// Handler is the HTTP adapter entrypoint for marketplace use-cases.
// Keeping only application dependencies here preserves clean adapter boundaries.
type Handler struct {
	service  *application.Service
	verifier ports.IdentityVerifier
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service, verifier ports.IdentityVerifier) *Handler {
	return &Handler{service: service, verifier: verifier}
}

// NewRouter registers marketplace HTTP routes and the middleware stack.
// Centralizing routes here ensures consistent auth and error behavior across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/market/v1", func(r chi.Router) {
		r.Get("/daos", handler.listDAOs)
		r.Get("/daos/{dao_id}", handler.getDAO)
		r.Get("/daos/{dao_id}/activation", handler.getActivation)
		r.Get("/daos/{dao_id}/proposals", handler.listProposals)
		r.Get("/daos/{dao_id}/moderators", handler.listDAOModerators)
		r.Get("/daos/{dao_id}/revenue", handler.getRevenue)
		r.Get("/daos/{dao_id}/revenue/shares", handler.getRevenueShares)
		r.Get("/proposals/{proposal_id}", handler.getProposal)
		r.Get("/moderators", handler.listModerators)
		r.Get("/moderators/{moderator_id}", handler.getModerator)
		r.Get("/moderators/{moderator_id}/access/{address}", handler.checkAccess)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Post("/daos", handler.createDAO)
			r.Post("/daos/{dao_id}/join", handler.joinDAO)
			r.Post("/daos/{dao_id}/proposals", handler.createProposal)
			r.Post("/proposals/{proposal_id}/votes", handler.castVote)
			r.Post("/proposals/{proposal_id}/execute", handler.executeProposal)
			r.Put("/moderators/{moderator_id}/pricing", handler.setPricing)
			r.Post("/moderators/{moderator_id}/activate", handler.activateModerator)
			r.Post("/moderators/{moderator_id}/purchases", handler.purchase)
		})
	})

	return r
}

package api

import (
	"net/http"

	"github.com/governet/arbiter/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(
		mux,
		domain.Cases.Handler().Routes(),
		domain.Topics.Handler().Routes(),
		domain.Controls.Handler().Routes(),
		domain.Sessions.Handler().Routes(),
	)
}

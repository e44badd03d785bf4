package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	billingHandler "github.com/tobiaswld/werkstatt/internal/http/billing"
	customerHandler "github.com/tobiaswld/werkstatt/internal/http/customer"
	"github.com/tobiaswld/werkstatt/internal/http/importcsv"
	loyaltyHandler "github.com/tobiaswld/werkstatt/internal/http/loyalty"
	orderHandler "github.com/tobiaswld/werkstatt/internal/http/order"
	shopHandler "github.com/tobiaswld/werkstatt/internal/http/shop"
)

func New(
	ordersV1 *orderHandler.Handler,
	documentsV1 *billingHandler.Handler,
	customersV1 *customerHandler.Handler,
	loyaltyV1 *loyaltyHandler.Handler,
	storesV1 *shopHandler.Handler,
	importV1 *importcsv.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			ordersV1.Routes(r)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			documentsV1.Routes(r)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			customersV1.Routes(r)
		})

		r.Route("/loyalty", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			loyaltyV1.Routes(r)
		})

		r.Route("/stores", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			storesV1.Routes(r)
		})

		r.Route("/import", importV1.Routes)
	})

	return router
}

package router

import (
	"net/http"

	"product-manager/internal/handler"
	"product-manager/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	accountHandler *handler.AccountHandler,
	tokens middleware.TokenParser,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> Logging -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	r.Get("/health", handler.Health)

	requireAuth := middleware.BearerAuth(tokens, logger)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", productHandler.List)
		r.Get("/{id}", productHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", productHandler.Create)
			r.Post("/batch", productHandler.CreateBatch)
			r.Put("/{id}", productHandler.Update)
			r.Delete("/{id}", productHandler.Delete)
			r.Delete("/", productHandler.DeleteMany)
		})
	})

	r.Route("/api/account", func(r chi.Router) {
		r.Post("/register", accountHandler.Register)
		r.Post("/login", accountHandler.Login)
		r.Get("/logout", accountHandler.Logout)
		r.With(requireAuth).Delete("/", accountHandler.Delete)

		r.With(middleware.AjaxOnly).Get("/register-email-check", accountHandler.RegisterEmailCheck)
		r.With(middleware.AjaxOnly).Get("/login-email-check", accountHandler.LoginEmailCheck)
	})

	return r
}

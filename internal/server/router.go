package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"vincula/internal/address"
	"vincula/internal/auth"
	"vincula/internal/cart"
	"vincula/internal/category"
	"vincula/internal/graphql"
	"vincula/internal/metrics"
	"vincula/internal/order"
	"vincula/internal/payment"
	"vincula/internal/product"
	"vincula/internal/review"
	"vincula/internal/shipping"
	"vincula/internal/user"
	"vincula/internal/wishlist"
)

// Controllers bundles every mounted module.
type Controllers struct {
	Auth     *auth.Controller
	Users    *user.Controller
	Products *product.Controller
	Category *category.Controller
	Orders   *order.Controller
	Cart     *cart.Controller
	Address  *address.Controller
	Payment  *payment.Controller
	Shipping *shipping.Controller
	Reviews  *review.Controller
	Wishlist *wishlist.Controller
	GraphQL  *graphql.Handler
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

func NewRouter(c Controllers, authMW *auth.Middleware, serverMetrics *metrics.ServerMetrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(serverMetrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", c.Auth.Register)
			r.Post("/login", c.Auth.Login)
			r.With(authMW.RequireAuth).Get("/me", c.Auth.Me)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Post("/", c.Users.Create)
			r.Get("/", c.Users.List)
			r.Get("/count", c.Users.Count)
			r.Get("/email/{email}", c.Users.GetByEmail)
			r.Get("/{id}", c.Users.GetByID)
			r.Put("/{id}", c.Users.Update)
			r.Delete("/{id}", c.Users.Delete)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", c.Products.List)
			r.Get("/count", c.Products.Count)
			r.Get("/sku/{sku}", c.Products.GetBySKU)
			r.Get("/category/{categoryId}", c.Products.ListByCategory)
			r.Get("/{id}", c.Products.GetByID)
			r.Group(func(r chi.Router) {
				r.Use(authMW.RequireAuth)
				r.Post("/", c.Products.Create)
				r.Put("/{id}", c.Products.Update)
				r.Delete("/{id}", c.Products.Delete)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", c.Category.List)
			r.Get("/{id}", c.Category.GetByID)
			r.Group(func(r chi.Router) {
				r.Use(authMW.RequireAuth)
				r.Post("/", c.Category.Create)
				r.Put("/{id}", c.Category.Update)
				r.Delete("/{id}", c.Category.Delete)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Post("/", c.Orders.Create)
			r.Get("/", c.Orders.List)
			r.Get("/count", c.Orders.Count)
			r.Get("/number/{orderNumber}", c.Orders.GetByNumber)
			r.Get("/user/{userId}", c.Orders.ListByUser)
			r.Get("/status/{status}", c.Orders.ListByStatus)
			r.Get("/status/{status}/count", c.Orders.CountByStatus)
			r.Get("/{id}", c.Orders.GetByID)
			r.Put("/{id}", c.Orders.Update)
			r.Delete("/{id}", c.Orders.Delete)
			r.Patch("/{id}/status", c.Orders.UpdateStatus)
			r.Patch("/{id}/payment-status", c.Orders.UpdatePaymentStatus)
			r.Post("/{id}/cancel", c.Orders.Cancel)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Get("/", c.Cart.Get)
			r.Post("/items", c.Cart.AddItem)
			r.Put("/items/{productId}", c.Cart.UpdateItem)
			r.Delete("/items/{productId}", c.Cart.RemoveItem)
			r.Delete("/", c.Cart.Clear)
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Post("/", c.Address.Create)
			r.Get("/", c.Address.ListMine)
			r.Get("/{id}", c.Address.GetByID)
			r.Put("/{id}", c.Address.Update)
			r.Delete("/{id}", c.Address.Delete)
		})

		r.Route("/payment-methods", func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Post("/", c.Payment.Create)
			r.Get("/", c.Payment.ListMine)
			r.Get("/{id}", c.Payment.GetByID)
			r.Put("/{id}", c.Payment.Update)
			r.Delete("/{id}", c.Payment.Delete)
		})

		r.Route("/shipping-methods", func(r chi.Router) {
			r.Get("/", c.Shipping.List)
			r.Get("/{id}", c.Shipping.GetByID)
			r.Group(func(r chi.Router) {
				r.Use(authMW.RequireAuth)
				r.Post("/", c.Shipping.Create)
				r.Put("/{id}", c.Shipping.Update)
				r.Delete("/{id}", c.Shipping.Delete)
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/product/{productId}", c.Reviews.ListByProduct)
			r.Get("/product/{productId}/average", c.Reviews.AverageRating)
			r.Get("/{id}", c.Reviews.GetByID)
			r.Group(func(r chi.Router) {
				r.Use(authMW.RequireAuth)
				r.Post("/", c.Reviews.Create)
				r.Put("/{id}", c.Reviews.Update)
				r.Delete("/{id}", c.Reviews.Delete)
			})
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Post("/", c.Wishlist.Add)
			r.Get("/", c.Wishlist.ListMine)
			r.Delete("/{productId}", c.Wishlist.Remove)
		})
	})

	r.With(authMW.RequireAuth).Post("/graphql", c.GraphQL.ServeHTTP)

	return r
}

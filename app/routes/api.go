package routes

import (
	"fmt"
	"time"

	"github.com/shashiranjanraj/meatshop/app/controllers"
	"github.com/shashiranjanraj/meatshop/app/services"
	"github.com/shashiranjanraj/meatshop/pkg/graphql"
	"github.com/shashiranjanraj/meatshop/pkg/middleware"
	"github.com/shashiranjanraj/meatshop/pkg/router"
	"github.com/shashiranjanraj/meatshop/pkg/ws"
)

// Deps are the services the API exposes.
type Deps struct {
	Catalog  *services.Catalog
	Cart     *services.CartStore
	Auth     *services.AuthStore
	Orders   *services.OrderStore
	Checkout *services.Checkout
	CartHub  *ws.Hub

	// TrackPoll is the order tracking stream's re-read interval.
	TrackPoll time.Duration
}

func RegisterAPI(r *router.Router, d Deps) {
	catalog := controllers.NewCatalogController(d.Catalog)
	cart := controllers.NewCartController(d.Cart, d.Catalog, d.CartHub)
	authController := controllers.NewAuthController(d.Auth)
	checkout := controllers.NewCheckoutController(d.Checkout, d.Auth)
	orders := controllers.NewOrderController(d.Orders, d.TrackPoll)

	schema, err := controllers.NewGraphQLSchema(d.Catalog, d.Orders)
	if err != nil {
		panic(fmt.Sprintf("routes: graphql schema: %v", err))
	}

	api := r.Group("/api")

	api.Get("/graphql", "graphql.query", graphql.Handler(schema))
	api.Post("/graphql", "graphql.execute", graphql.Handler(schema))

	api.Get("/catalog", "catalog.index", catalog.Index)
	api.Get("/catalog/categories", "catalog.categories", catalog.Categories)
	api.Get("/catalog/combos", "catalog.combos", catalog.Combos)
	api.Get("/catalog/{id}", "catalog.show", catalog.Show)

	api.Get("/cart", "cart.show", cart.Show)
	api.Delete("/cart", "cart.clear", cart.Clear)
	api.Get("/cart/ws", "cart.stream", cart.Stream)
	api.Post("/cart/items", "cart.add", cart.Add)
	api.Post("/cart/items/{id}/decrement", "cart.decrement", cart.Decrement)
	api.Put("/cart/items/{id}", "cart.update", cart.Update)
	api.Delete("/cart/items/{id}", "cart.remove", cart.Remove)

	// Credential endpoints get a tighter limit than the global one.
	authGroup := api.Group("/auth", middleware.RateLimit(20, time.Minute))
	authGroup.Post("/login", "auth.login", authController.Login)
	authGroup.Post("/register", "auth.register", authController.Register)
	authGroup.Post("/logout", "auth.logout", authController.Logout)
	authGroup.Get("/me", "auth.me", authController.Me)
	authGroup.Post("/otp/send", "auth.otp.send", authController.SendOTP)
	authGroup.Post("/otp/verify", "auth.otp.verify", authController.VerifyOTP)
	authGroup.Post("/password/forgot", "auth.password.forgot", authController.ForgotPassword)
	authGroup.Get("/password/verify", "auth.password.verify", authController.VerifyResetToken)
	authGroup.Post("/password/reset", "auth.password.reset", authController.ResetPassword)

	api.Get("/checkout", "checkout.show", checkout.Show)
	api.Get("/orders/{id}/track", "orders.track", orders.Track)
	api.Get("/orders/{id}/track/stream", "orders.track.stream", orders.TrackStream)

	protected := api.Group("", middleware.Authenticate)
	protected.Put("/profile", "profile.update", authController.UpdateProfile)
	protected.Post("/checkout", "checkout.place", checkout.Place)
	protected.Get("/orders", "orders.index", orders.Index)
	protected.Get("/orders/{id}", "orders.show", orders.Show)
	protected.Post("/orders/{id}/cancel", "orders.cancel", orders.Cancel)
}

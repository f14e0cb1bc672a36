package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/vendorhub-backend/api/controllers"
	"github.com/angelmondragon/vendorhub-backend/api/middleware"
	cartsvc "github.com/angelmondragon/vendorhub-backend/internal/cart"
	catalogsvc "github.com/angelmondragon/vendorhub-backend/internal/catalog"
	checkoutsvc "github.com/angelmondragon/vendorhub-backend/internal/checkout"
	customersvc "github.com/angelmondragon/vendorhub-backend/internal/customers"
	offersvc "github.com/angelmondragon/vendorhub-backend/internal/offers"
	receiptsvc "github.com/angelmondragon/vendorhub-backend/internal/receipts"
	usersvc "github.com/angelmondragon/vendorhub-backend/internal/users"
	wishlistsvc "github.com/angelmondragon/vendorhub-backend/internal/wishlist"
	"github.com/angelmondragon/vendorhub-backend/pkg/auth/session"
	"github.com/angelmondragon/vendorhub-backend/pkg/config"
	"github.com/angelmondragon/vendorhub-backend/pkg/db"
	"github.com/angelmondragon/vendorhub-backend/pkg/logger"
	"github.com/angelmondragon/vendorhub-backend/pkg/metrics"
)

// RouterParams collects everything the HTTP surface depends on.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Registry *prometheus.Registry
	HTTP     *metrics.HTTPMetrics
	Sessions session.AccessSessionChecker

	Users     usersvc.Service
	Customers customersvc.Service
	Catalog   catalogsvc.Service
	Offers    offersvc.Service
	Cart      cartsvc.Service
	Checkout  checkoutsvc.Service
	Receipts  receiptsvc.Service
	Wishlist  wishlistsvc.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTP),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	authMW := middleware.Auth(cfg.JWT, p.Sessions, logg)
	siteMW := middleware.Site(p.Customers, cfg.Site.DefaultDomain, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.DB, logg))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	// Storefront cart and checkout paths, sku-keyed with trailing slashes.
	r.Group(func(r chi.Router) {
		r.Use(authMW, siteMW)
		r.Post("/add-to-cart/{sku}/", controllers.AddToCart(p.Cart, p.Customers, logg))
		r.Patch("/remove-from-cart/{sku}/", controllers.RemoveFromCart(p.Cart, p.Customers, logg))
		r.Patch("/increase-item-quantity/{sku}/", controllers.IncreaseItemQuantity(p.Cart, p.Customers, logg))
		r.Patch("/remove-single-item-from-cart/{sku}/", controllers.RemoveSingleItemFromCart(p.Cart, p.Customers, logg))
		r.Get("/cart/", controllers.GetCart(p.Cart, p.Customers, logg))
		r.Post("/checkout/", controllers.Checkout(p.Checkout, p.Customers, logg))
		r.Post("/checkout/retry/", controllers.CheckoutRetry(p.Checkout, p.Customers, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.Register(p.Users, logg))
			r.Post("/login", controllers.Login(p.Users, logg))
			r.With(authMW).Post("/logout", controllers.Logout(p.Users, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(authMW, siteMW)

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.CreateProduct(p.Catalog, logg))
				r.Get("/", controllers.ListProducts(p.Catalog, logg))
				r.Get("/{id}", controllers.GetProduct(p.Catalog, logg))
				r.Put("/{id}", controllers.UpdateProduct(p.Catalog, logg))
				r.Delete("/{id}", controllers.DeleteProduct(p.Catalog, logg))
			})

			r.Route("/classifiers", func(r chi.Router) {
				r.Post("/", controllers.CreateClassifier(p.Catalog, logg))
				r.Get("/", controllers.ListClassifiers(p.Catalog, logg))
			})

			r.Route("/offers", func(r chi.Router) {
				r.Post("/", controllers.CreateOffer(p.Offers, logg))
				r.Get("/", controllers.ListOffers(p.Offers, logg))
				r.Get("/{sku}", controllers.GetOffer(p.Offers, p.Customers, logg))
				r.Post("/{sku}/prices", controllers.AddPrice(p.Offers, logg))
				r.Get("/{sku}/prices", controllers.ListPrices(p.Offers, logg))
			})

			r.Route("/receipts", func(r chi.Router) {
				r.Get("/", controllers.ListReceipts(p.Receipts, p.Customers, logg))
				r.Get("/{id}", controllers.GetReceipt(p.Receipts, p.Customers, logg))
			})
			r.Get("/ownership/{productID}", controllers.CheckOwnership(p.Receipts, p.Customers, logg))

			r.Route("/wishlists", func(r chi.Router) {
				r.Post("/", controllers.CreateWishlist(p.Wishlist, p.Customers, logg))
				r.Get("/", controllers.ListWishlists(p.Wishlist, p.Customers, logg))
				r.Get("/{id}", controllers.GetWishlist(p.Wishlist, p.Customers, logg))
				r.Delete("/{id}", controllers.DeleteWishlist(p.Wishlist, p.Customers, logg))
				r.Post("/{id}/offers/{sku}", controllers.AddWishlistOffer(p.Wishlist, p.Customers, logg))
				r.Delete("/{id}/offers/{sku}", controllers.RemoveWishlistOffer(p.Wishlist, p.Customers, logg))
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Post("/", controllers.AddAddress(p.Customers, logg))
				r.Get("/", controllers.ListAddresses(p.Customers, logg))
				r.Delete("/{id}", controllers.RemoveAddress(p.Customers, logg))
			})

			r.Patch("/profile/currency", controllers.SetCurrency(p.Customers, logg))
		})
	})

	return r
}

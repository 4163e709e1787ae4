package http

import (
	"net/http"
	"time"

	"github.com/fjod/gamestore/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// RouterConfig carries the use cases behind each route group and the
// middleware settings.
type RouterConfig struct {
	Logger         *zap.Logger
	JWTSecret      string
	RequestTimeout time.Duration
	ChatRate       float64
	ChatBurst      int

	Auth      sessionIssuer
	Catalog   gameCatalog
	Reviews   gameReviews
	Carts     cartStore
	AddToCart eligibleAdder
	Checkout  paymentProcessor
	Orders    orderManager
	Library   libraryManager
	Community communityFeed
	Profiles  profileManager
	Assistant recommender
}

func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.Auth)
	gamesHandler := NewGamesHandler(cfg.Catalog, cfg.Reviews)
	cartHandler := NewCartHandler(cfg.Carts, cfg.AddToCart)
	checkoutHandler := NewCheckoutHandler(cfg.Carts, cfg.Checkout)
	ordersHandler := NewOrdersHandler(cfg.Orders)
	libraryHandler := NewLibraryHandler(cfg.Library)
	postsHandler := NewPostsHandler(cfg.Community)
	profileHandler := NewProfileHandler(cfg.Profiles)
	chatHandler := NewChatHandler(cfg.Assistant)

	authenticator := NewAuthenticator(cfg.JWTSecret)
	chatLimiter := NewRateLimiter(cfg.ChatRate, cfg.ChatBurst)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.SignUp)
		r.Post("/auth/signin", authHandler.SignIn)

		r.Get("/games", gamesHandler.ListGames)
		r.Get("/games/{id}", gamesHandler.GetGame)
		r.Get("/games/{id}/reviews", gamesHandler.ListReviews)

		r.Get("/posts", postsHandler.ListPosts)
		r.Get("/posts/{id}", postsHandler.GetPost)
		r.Get("/posts/{id}/comments", postsHandler.ListComments)

		r.Group(func(r chi.Router) {
			r.Use(authenticator.Handler)

			r.Post("/games/{id}/reviews", gamesHandler.AddReview)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{game_id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{game_id}", cartHandler.RemoveItem)
			})

			r.Post("/checkout", checkoutHandler.Checkout)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordersHandler.ListOrders)
				r.Get("/{id}", ordersHandler.GetOrder)
				r.Post("/{id}/cancel", ordersHandler.CancelOrder)
			})

			r.Route("/library", func(r chi.Router) {
				r.Get("/", libraryHandler.ListLibrary)
				r.Post("/{game_id}/claim", libraryHandler.ClaimFreeGame)
				r.Post("/{game_id}/playtime", libraryHandler.UpdatePlaytime)
			})

			r.Post("/posts", postsHandler.CreatePost)
			r.Post("/posts/{id}/like", postsHandler.LikePost)
			r.Post("/posts/{id}/comments", postsHandler.AddComment)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.GetProfile)
				r.Put("/", profileHandler.UpdateProfile)
				r.Post("/image", profileHandler.UploadImage)
			})

			r.With(chatLimiter.Handler).Post("/chat", chatHandler.Ask)
		})
	})

	return otelhttp.NewHandler(r, "gamestore")
}

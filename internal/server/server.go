package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/juhi-kothari/Pranam-app/internal/auth"
	"github.com/juhi-kothari/Pranam-app/internal/config"
	"github.com/juhi-kothari/Pranam-app/internal/events"
	"github.com/juhi-kothari/Pranam-app/internal/handler"
	appmw "github.com/juhi-kothari/Pranam-app/internal/middleware"
	"github.com/juhi-kothari/Pranam-app/internal/payment"
	"github.com/juhi-kothari/Pranam-app/internal/repository"
	"github.com/juhi-kothari/Pranam-app/internal/service"
	"github.com/juhi-kothari/Pranam-app/internal/storage"
	"github.com/juhi-kothari/Pranam-app/internal/telemetry"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators the router needs. Publisher, Uploader,
// Metrics and MetricsHandler are optional.
type Deps struct {
	Config         *config.Config
	DB             *gorm.DB
	Logger         *zap.Logger
	Gateway        payment.Gateway
	Publisher      events.Publisher
	Uploader       storage.Uploader
	Metrics        *telemetry.ShopMetrics
	MetricsHandler http.Handler
	BuildTime      string
}

type Server struct {
	e *echo.Echo
}

func New(d Deps) *Server {
	cfg := d.Config
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(cfg.IsProduction(), log)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(appmw.RequestLogger(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin(cfg.CORSAllowedOrigins, !cfg.IsProduction()),
	}))

	store := repository.NewStore(d.DB)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	authMw := appmw.NewAuthMiddleware(issuer)

	gateway := d.Gateway
	if gateway == nil {
		gateway = payment.NewGateway(cfg.Payment)
	}
	orderHandler := handler.NewOrderHandler(service.NewOrderService(store, gateway, cfg.Payment, d.Publisher, d.Metrics, log))
	cartHandler := handler.NewCartHandler(service.NewCartService(store))
	chatHandler := handler.NewChatHandler(service.NewChatService(store, d.Uploader, d.Publisher, d.Metrics, log))
	authHandler := handler.NewAuthHandler(service.NewAccountService(store.Users(), issuer, log))
	newsHandler := handler.NewNewsletterHandler(service.NewNewsletterService(store.Newsletters()))
	blogHandler := handler.NewBlogHandler(service.NewBlogService(store, log), service.NewCommentService(store, log))
	bookmarkHandler := handler.NewBookmarkHandler(service.NewBookmarkService(store))
	formHandler := handler.NewFormHandler(service.NewFormService(store.Forms(), log))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    cfg.GitSHA,
			"build_time": d.BuildTime,
		})
	})
	e.GET("/health", health(d.DB, cfg))
	if d.MetricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(d.MetricsHandler))
	}

	chatLimit := appmw.RateLimit(cfg.ChatRateLimit, 5)
	loginLimit := appmw.RateLimit(1, 5)
	// Anonymous submissions share one per-IP budget.
	submitLimit := appmw.RateLimit(cfg.ChatRateLimit, 5)

	api := e.Group("/api")
	api.POST("/auth/login", authHandler.Login, loginLimit)

	chat := api.Group("/chat", authMw.OptionalAuth)
	chat.POST("/start", chatHandler.Start, chatLimit)
	chat.POST("/:conversationId/message", chatHandler.PostMessage, chatLimit)
	chat.POST("/:conversationId/attachments", chatHandler.Attach, chatLimit, middleware.BodyLimit("11M"))
	chat.GET("/:conversationId/messages", chatHandler.ListMessages)
	chat.POST("/:conversationId/read", chatHandler.MarkRead)

	api.POST("/newsletter/subscribe", newsHandler.Subscribe)
	api.POST("/newsletter/unsubscribe", newsHandler.Unsubscribe)

	blogs := api.Group("/blogs", authMw.OptionalAuth)
	blogs.GET("/:slug", blogHandler.Get)
	blogs.POST("/:slug/like", blogHandler.Like, authMw.RequireAuth)

	comments := api.Group("/comments", authMw.OptionalAuth)
	comments.GET("/blog/:blogId", blogHandler.ListComments)
	comments.POST("", blogHandler.AddComment, submitLimit)

	forms := api.Group("/forms", authMw.OptionalAuth, submitLimit)
	forms.POST("/healing", formHandler.SubmitHealing)
	forms.POST("/questions", formHandler.SubmitQuestion)

	admin := api.Group("/admin", authMw.RequireAuth, authMw.RequireAdmin)
	admin.GET("/chats", chatHandler.ListConversations)
	admin.PATCH("/chats/:conversationId/status", chatHandler.UpdateStatus)
	admin.GET("/newsletter-subscribers", newsHandler.List)
	admin.POST("/blogs", blogHandler.Create)
	admin.PUT("/blogs/:id", blogHandler.Update)
	admin.DELETE("/blogs/:id", blogHandler.Delete)
	admin.GET("/comments/pending", blogHandler.PendingComments)
	admin.GET("/comments/stats", blogHandler.CommentStats)
	admin.PUT("/comments/:id/approve", blogHandler.ApproveComment)
	admin.DELETE("/comments/:id", blogHandler.DeleteComment)
	admin.GET("/healing-forms", formHandler.ListHealing)
	admin.PUT("/healing-forms/:id/status", formHandler.UpdateHealingStatus)
	admin.GET("/questions", formHandler.ListQuestions)
	admin.PUT("/questions/:id/answer", formHandler.AnswerQuestion)

	v1 := api.Group("/v1")
	// The webhook authenticates by signature, not by bearer token.
	v1.POST("/payments/webhook", orderHandler.Webhook)

	payments := v1.Group("/payments", authMw.RequireAuth)
	payments.POST("/create-order", orderHandler.CreateOrder)
	payments.POST("/verify", orderHandler.VerifyPayment)

	cart := v1.Group("/cart", authMw.RequireAuth)
	cart.GET("", cartHandler.Get)
	cart.POST("/items", cartHandler.AddItem)
	cart.PUT("/items/:publicationId", cartHandler.UpdateItem)
	cart.DELETE("/items/:publicationId", cartHandler.RemoveItem)
	cart.DELETE("", cartHandler.Clear)

	v1.GET("/bookmarks/popular", bookmarkHandler.Popular)
	bookmarks := v1.Group("/bookmarks", authMw.RequireAuth)
	bookmarks.GET("", bookmarkHandler.List)
	bookmarks.GET("/count", bookmarkHandler.Count)
	bookmarks.POST("", bookmarkHandler.Add)
	bookmarks.POST("/toggle", bookmarkHandler.Toggle)
	bookmarks.GET("/check/:publicationId", bookmarkHandler.Check)
	bookmarks.DELETE("/clear", bookmarkHandler.Clear)
	bookmarks.DELETE("/:publicationId", bookmarkHandler.Remove)

	orders := v1.Group("/orders", authMw.RequireAuth)
	orders.GET("/my-orders", orderHandler.ListMine)
	orders.GET("/admin/stats", orderHandler.Stats, authMw.RequireAdmin)
	orders.GET("", orderHandler.List, authMw.RequireAdmin)
	orders.GET("/:id", orderHandler.Get)
	orders.PUT("/:id/cancel", orderHandler.Cancel)
	orders.PUT("/:id/status", orderHandler.UpdateStatus, authMw.RequireAdmin)
	orders.POST("/:id/refund", orderHandler.Refund, authMw.RequireAdmin)

	return &Server{e: e}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

func health(db *gorm.DB, cfg *config.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		status := http.StatusOK
		dbState := "up"
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status = http.StatusServiceUnavailable
			dbState = "down"
		}
		return c.JSON(status, handler.Envelope{
			Success: status == http.StatusOK,
			Message: "Pranam API",
			Data: map[string]string{
				"database":    dbState,
				"environment": cfg.AppEnv,
				"version":     cfg.Version,
			},
		})
	}
}

type wildcardOrigin struct {
	scheme string
	suffix string
}

// allowOrigin accepts exact origins and wildcard entries such as
// "https://*.vercel.app". Localhost is accepted outside production.
func allowOrigin(allowed []string, allowLocal bool) func(string) (bool, error) {
	exact := make(map[string]struct{}, len(allowed))
	var wild []wildcardOrigin
	for _, o := range allowed {
		o = strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
		if o == "" {
			continue
		}
		if scheme, host, ok := strings.Cut(o, "://*."); ok {
			wild = append(wild, wildcardOrigin{scheme: scheme, suffix: "." + host})
			continue
		}
		exact[o] = struct{}{}
	}
	return func(origin string) (bool, error) {
		low := strings.ToLower(origin)
		if _, ok := exact[low]; ok {
			return true, nil
		}
		if allowLocal && (strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:")) {
			return true, nil
		}
		u, err := url.Parse(low)
		if err != nil {
			return false, nil
		}
		for _, w := range wild {
			if u.Scheme == w.scheme && strings.HasSuffix(u.Hostname(), w.suffix) {
				return true, nil
			}
		}
		return false, nil
	}
}

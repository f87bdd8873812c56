package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sylveur65/Projet-goodyfans-sub000/internal/config"
	authsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/auth"
	contentsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/content"
	mediasvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/media"
	modsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/moderation"
	purchasesvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/purchases"
	userssvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/users"
	"github.com/sylveur65/Projet-goodyfans-sub000/internal/transport/http/handlers"
)

type Dependencies struct {
	JWTManager        *authsvc.JWTManager
	UserService       *userssvc.Service
	MediaService      *mediasvc.Service
	ContentService    *contentsvc.Service
	ModerationService *modsvc.Service
	PurchaseService   *purchasesvc.Service
	Logger            *zap.Logger
	Config            config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.UserService, deps.JWTManager)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService)
	contentHandler := handlers.NewContentHandler(deps.ContentService)
	moderationHandler := handlers.NewModerationHandler(deps.ModerationService, deps.ContentService, deps.Logger)
	purchaseHandler := handlers.NewPurchaseHandler(deps.PurchaseService)

	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)
	adminMW := RequireRole("admin")
	creatorMW := RequireRole("creator", "admin")

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(authMW).Get("/me", authHandler.Me)
			r.With(authMW).Post("/totp/setup", authHandler.SetupTOTP)
		})

		r.With(authMW, creatorMW).Post("/media/upload", mediaHandler.Upload)

		r.Route("/content", func(r chi.Router) {
			r.With(authMW, creatorMW).Post("/", contentHandler.Create)
			r.With(authMW).Get("/mine", contentHandler.ListMine)
			r.With(authMW).Get("/{id}", contentHandler.Get)
		})

		r.Route("/purchases", func(r chi.Router) {
			r.With(authMW).Post("/", purchaseHandler.Buy)
			r.With(authMW).Get("/", purchaseHandler.ListMine)
			r.With(authMW).Get("/{id}", purchaseHandler.Open)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMW, adminMW)
			r.Get("/moderation", moderationHandler.List)
			r.Get("/moderation/stats", moderationHandler.Stats)
			r.Post("/moderation/rescan", moderationHandler.RescanAll)
			r.Post("/moderation/{id}/review", moderationHandler.Review)
			r.Post("/content/{id}/rescan", moderationHandler.RescanOne)
		})
	})
}

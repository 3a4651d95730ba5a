package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"github.com/example/daps/internal/config"
	"github.com/example/daps/internal/handlers"
	"github.com/example/daps/internal/middleware"
	"github.com/example/daps/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	emailService := services.NewEmailService(cfg)

	primary := services.NewNBAScheduleProvider(cfg.ScheduleBaseURL, cfg.ProviderTimeout, cfg.SeasonStartMonth)
	fallback := services.NewBalldontlieProvider(cfg.FallbackBaseURL, cfg.ProviderTimeout)
	scheduleSource := &services.ChainedScheduleSource{Primary: primary, Secondary: fallback}

	syncService := services.NewSyncService(db, scheduleSource, cfg.ScheduleStaleBelow)
	rosterService := services.NewRosterService(db, fallback, clockwork.NewRealClock(), cfg.RosterTTL, cfg.RosterFetchDelay)

	authHandler := handlers.NewAuthHandler(db, cfg, emailService)
	athleteHandler := handlers.NewAthleteHandler(db, cfg, syncService)
	gamesHandler := handlers.NewGamesHandler(db, syncService)
	offersHandler := handlers.NewOffersHandler(db, emailService)
	rosterHandler := handlers.NewRosterHandler(rosterService)

	userAuth := middleware.AuthMiddleware(cfg)
	adminAuth := middleware.AdminMiddleware(cfg)

	api := app.Group("/api")

	// Accounts and sessions
	users := api.Group("/users")
	users.Post("/register", authHandler.Register)
	users.Get("/verify", authHandler.Verify)
	users.Post("/resend-verification", authHandler.ResendVerification)
	users.Post("/request-password-reset", authHandler.RequestPasswordReset)
	users.Post("/reset-password", authHandler.ResetPassword)
	users.Post("/login", authHandler.Login)
	users.Get("/me", userAuth, authHandler.Me)

	// A fan's own offers
	userOffers := users.Group("/offers", userAuth)
	userOffers.Post("/", offersHandler.Create)
	userOffers.Get("/", offersHandler.ListMine)
	userOffers.Post("/:id/messages", offersHandler.CreateMessage)
	userOffers.Get("/:id/messages", offersHandler.ListMessages)

	// Athlete catalog: reads are public, writes are admin-only
	athletes := api.Group("/athletes")
	athletes.Get("/", athleteHandler.List)
	athletes.Post("/", adminAuth, athleteHandler.Create)
	athletes.Get("/:id", athleteHandler.Get)
	athletes.Patch("/:id", adminAuth, athleteHandler.Update)
	athletes.Delete("/:id", adminAuth, athleteHandler.Delete)
	athletes.Post("/:id/sync", adminAuth, athleteHandler.Resync)

	// Schedules
	games := api.Group("/games")
	games.Get("/", gamesHandler.List)
	games.Post("/", adminAuth, gamesHandler.Create)
	games.Post("/bulk", adminAuth, gamesHandler.BulkCreate)
	games.Delete("/:id", adminAuth, gamesHandler.Delete)

	// Admin offer review
	offers := api.Group("/offers", adminAuth)
	offers.Get("/", offersHandler.List)
	offers.Get("/messages", offersHandler.ListAllMessages)
	offers.Get("/:id", offersHandler.Get)
	offers.Put("/:id/status", offersHandler.UpdateStatus)
	offers.Delete("/:id", offersHandler.Delete)

	// Player directory
	roster := api.Group("/roster", adminAuth)
	roster.Get("/players", rosterHandler.Players)
	roster.Post("/import", rosterHandler.Import)
}

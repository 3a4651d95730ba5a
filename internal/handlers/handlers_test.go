package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/daps/internal/config"
	"github.com/example/daps/internal/database"
	"github.com/example/daps/internal/middleware"
	"github.com/example/daps/internal/models"
	"github.com/example/daps/internal/services"
	"github.com/example/daps/internal/utils"
)

const (
	testJWTSecret  = "test-session-secret"
	testAdminToken = "test-admin-token"
)

// stubSource is a canned ScheduleSource so handler tests never touch
// the network.
type stubSource struct {
	games    []services.ProviderGame
	supports bool
}

func (s *stubSource) FetchTeamSchedule(team string) []services.ProviderGame { return s.games }
func (s *stubSource) SupportsTeam(team string) bool                         { return s.supports }

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func newTestEnv(t *testing.T, source services.ScheduleSource) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a second connection would see a different in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:          testJWTSecret,
		TokenExpires:       time.Hour,
		AdminToken:         testAdminToken,
		ScheduleStaleBelow: 3,
		RosterTTL:          time.Hour,
	}

	// SMTP deliberately unconfigured: sends become logged no-ops
	emailService := services.NewEmailService(cfg)
	syncService := services.NewSyncService(db, source, cfg.ScheduleStaleBelow)
	rosterService := services.NewRosterService(db, stubRoster{}, clockwork.NewFakeClock(), cfg.RosterTTL, 0)

	authHandler := NewAuthHandler(db, cfg, emailService)
	athleteHandler := NewAthleteHandler(db, cfg, syncService)
	gamesHandler := NewGamesHandler(db, syncService)
	offersHandler := NewOffersHandler(db, emailService)
	rosterHandler := NewRosterHandler(rosterService)

	userAuth := middleware.AuthMiddleware(cfg)
	adminAuth := middleware.AdminMiddleware(cfg)

	app := fiber.New()
	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/register", authHandler.Register)
	users.Get("/verify", authHandler.Verify)
	users.Post("/resend-verification", authHandler.ResendVerification)
	users.Post("/request-password-reset", authHandler.RequestPasswordReset)
	users.Post("/reset-password", authHandler.ResetPassword)
	users.Post("/login", authHandler.Login)
	users.Get("/me", userAuth, authHandler.Me)

	userOffers := users.Group("/offers", userAuth)
	userOffers.Post("/", offersHandler.Create)
	userOffers.Get("/", offersHandler.ListMine)
	userOffers.Post("/:id/messages", offersHandler.CreateMessage)
	userOffers.Get("/:id/messages", offersHandler.ListMessages)

	athletes := api.Group("/athletes")
	athletes.Get("/", athleteHandler.List)
	athletes.Post("/", adminAuth, athleteHandler.Create)
	athletes.Get("/:id", athleteHandler.Get)
	athletes.Patch("/:id", adminAuth, athleteHandler.Update)
	athletes.Delete("/:id", adminAuth, athleteHandler.Delete)
	athletes.Post("/:id/sync", adminAuth, athleteHandler.Resync)

	games := api.Group("/games")
	games.Get("/", gamesHandler.List)
	games.Post("/", adminAuth, gamesHandler.Create)
	games.Post("/bulk", adminAuth, gamesHandler.BulkCreate)
	games.Delete("/:id", adminAuth, gamesHandler.Delete)

	offers := api.Group("/offers", adminAuth)
	offers.Get("/", offersHandler.List)
	offers.Get("/messages", offersHandler.ListAllMessages)
	offers.Get("/:id", offersHandler.Get)
	offers.Put("/:id/status", offersHandler.UpdateStatus)
	offers.Delete("/:id", offersHandler.Delete)

	roster := api.Group("/roster", adminAuth)
	roster.Get("/players", rosterHandler.Players)
	roster.Post("/import", rosterHandler.Import)

	return &testEnv{app: app, db: db, cfg: cfg}
}

type stubRoster struct{}

func (stubRoster) TeamRoster(team string) []services.PlayerRecord {
	if team != "Lakers" {
		return nil
	}
	return []services.PlayerRecord{{Name: "Stub Player", Team: "Lakers", League: "NBA"}}
}

// request performs one JSON request against the test app and returns
// the response.
func (e *testEnv) request(t *testing.T, method, path string, body interface{}, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// createVerifiedUser inserts a user directly and returns a session
// token for them.
func (e *testEnv) createVerifiedUser(t *testing.T, email, password string) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	require.NoError(t, err)

	now := time.Now()
	user := &models.User{
		FirstName:       "Test",
		LastName:        "Fan",
		Email:           email,
		PasswordHash:    hash,
		EmailVerifiedAt: &now,
	}
	require.NoError(t, e.db.Create(user).Error)

	token, err := utils.GenerateToken(e.cfg.JWTSecret, user.ID, user.Email, e.cfg.TokenExpires)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) createAthlete(t *testing.T, name, team string) *models.Athlete {
	t.Helper()
	athlete := &models.Athlete{
		Slug:   utils.Slugify(name),
		Name:   name,
		Team:   team,
		League: "NBA",
		Active: true,
	}
	require.NoError(t, e.db.Create(athlete).Error)
	return athlete
}

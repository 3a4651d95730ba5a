package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/daps/internal/models"
	"github.com/example/daps/internal/services"
)

// GamesHandler serves athlete schedules. Reads go through the sync
// engine so a stale or empty schedule is refreshed before it is shown.
type GamesHandler struct {
	db   *gorm.DB
	sync *services.SyncService
}

// NewGamesHandler constructs a GamesHandler.
func NewGamesHandler(db *gorm.DB, sync *services.SyncService) *GamesHandler {
	return &GamesHandler{db: db, sync: sync}
}

// List returns the games of the athlete named by ?athleteId= (UUID or
// slug), sorted by date. ?upcoming=true restricts to games from today
// on.
func (h *GamesHandler) List(c *fiber.Ctx) error {
	athleteID := c.Query("athleteId")
	if athleteID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "athleteId query parameter required")
	}

	athlete, err := findAthlete(h.db, athleteID)
	if err != nil {
		return err
	}

	result := h.sync.EnsureFreshSchedule(athlete)

	query := h.db.Where("athlete_id = ?", athlete.ID).Order("date ASC")
	if c.Query("upcoming") == "true" {
		today := time.Now().Truncate(24 * time.Hour)
		query = query.Where("date >= ?", today)
	}

	var games []models.Game
	if err := query.Find(&games).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"athlete": fiber.Map{"id": athlete.ID, "slug": athlete.Slug, "name": athlete.Name, "team": athlete.Team},
		"synced":  result.Success,
		"games":   games,
	})
}

type gameRequest struct {
	Date     string `json:"date"`
	Opponent string `json:"opponent"`
	Venue    string `json:"venue"`
}

func (g gameRequest) toModel(athleteID uuid.UUID) (models.Game, error) {
	date, err := time.Parse(time.RFC3339, g.Date)
	if err != nil {
		if date, err = time.Parse("2006-01-02", g.Date); err != nil {
			return models.Game{}, fiber.NewError(fiber.StatusBadRequest, "date must be RFC3339 or YYYY-MM-DD")
		}
	}
	if g.Opponent == "" {
		return models.Game{}, fiber.NewError(fiber.StatusBadRequest, "opponent is required")
	}
	return models.Game{
		AthleteID: athleteID,
		Date:      date,
		Opponent:  g.Opponent,
		Venue:     g.Venue,
		Source:    "manual",
	}, nil
}

type createGameRequest struct {
	AthleteID string `json:"athleteId"`
	gameRequest
}

// Create adds one manually entered game to an athlete's schedule.
func (h *GamesHandler) Create(c *fiber.Ctx) error {
	var req createGameRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.AthleteID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "athleteId is required")
	}

	athlete, err := findAthlete(h.db, req.AthleteID)
	if err != nil {
		return err
	}

	game, err := req.toModel(athlete.ID)
	if err != nil {
		return err
	}

	res := h.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&game)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusConflict, "a game against this opponent on this date already exists")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "game": game})
}

type bulkGamesRequest struct {
	AthleteID string        `json:"athleteId"`
	Games     []gameRequest `json:"games"`
}

// BulkCreate inserts many games at once, skipping rows that collide
// with an existing (date, opponent) pair.
func (h *GamesHandler) BulkCreate(c *fiber.Ctx) error {
	var req bulkGamesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.AthleteID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "athleteId is required")
	}
	if len(req.Games) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "games array is empty")
	}

	athlete, err := findAthlete(h.db, req.AthleteID)
	if err != nil {
		return err
	}

	games := make([]models.Game, 0, len(req.Games))
	for _, g := range req.Games {
		game, err := g.toModel(athlete.ID)
		if err != nil {
			return err
		}
		games = append(games, game)
	}

	res := h.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&games)
	if res.Error != nil {
		return res.Error
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"inserted": res.RowsAffected,
		"skipped":  int64(len(games)) - res.RowsAffected,
	})
}

// Delete removes one game by its row id.
func (h *GamesHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid game id")
	}

	res := h.db.Where("id = ?", id).Delete(&models.Game{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "game not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "game deleted"})
}

package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/daps/internal/config"
	"github.com/example/daps/internal/middleware"
	"github.com/example/daps/internal/models"
	"github.com/example/daps/internal/services"
	"github.com/example/daps/internal/utils"
)

// AthleteHandler serves the athlete catalog and its schedule sync
// controls.
type AthleteHandler struct {
	db   *gorm.DB
	cfg  *config.Config
	sync *services.SyncService
}

// NewAthleteHandler constructs an AthleteHandler.
func NewAthleteHandler(db *gorm.DB, cfg *config.Config, sync *services.SyncService) *AthleteHandler {
	return &AthleteHandler{db: db, cfg: cfg, sync: sync}
}

// findAthlete resolves the :id route param as a UUID first and falls
// back to slug lookup, so both forms address the same athlete.
func findAthlete(db *gorm.DB, param string) (*models.Athlete, error) {
	var athlete models.Athlete

	if id, err := uuid.Parse(param); err == nil {
		if err := db.First(&athlete, "id = ?", id).Error; err == nil {
			return &athlete, nil
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	if err := db.First(&athlete, "slug = ?", strings.ToLower(param)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "athlete not found")
		}
		return nil, err
	}

	return &athlete, nil
}

// List returns the catalog sorted by name. The public view is limited
// to active athletes; a request carrying the admin credential sees
// everyone. ?featured=true restricts to the featured subset.
func (h *AthleteHandler) List(c *fiber.Ctx) error {
	query := h.db.Model(&models.Athlete{}).Order("name ASC")

	token, _ := middleware.BearerToken(c)
	if !middleware.IsAdminCredential(h.cfg.AdminToken, token) {
		query = query.Where("active = ?", true)
	}
	if c.Query("featured") == "true" {
		query = query.Where("featured = ?", true)
	}

	var athletes []models.Athlete
	if err := query.Find(&athletes).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"athletes": athletes,
	})
}

// Get returns one athlete by id or slug.
func (h *AthleteHandler) Get(c *fiber.Ctx) error {
	athlete, err := findAthlete(h.db, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "athlete": athlete})
}

type createAthleteRequest struct {
	Name     string `json:"name"`
	Team     string `json:"team"`
	League   string `json:"league"`
	ImageURL string `json:"imageUrl"`
	Featured bool   `json:"featured"`
}

// Create adds an athlete. The slug is derived from the name and must
// be unique; a schedule sync is kicked off in the background so the
// first visitor does not pay for it.
func (h *AthleteHandler) Create(c *fiber.Ctx) error {
	var req createAthleteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Team == "" || req.League == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name, team and league are required")
	}

	slug := utils.Slugify(req.Name)
	if slug == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name must contain at least one letter or digit")
	}

	var count int64
	if err := h.db.Model(&models.Athlete{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fiber.NewError(fiber.StatusConflict, "an athlete with this name already exists")
	}

	athlete := models.Athlete{
		Slug:     slug,
		Name:     req.Name,
		Team:     req.Team,
		League:   req.League,
		ImageURL: req.ImageURL,
		Active:   true,
		Featured: req.Featured,
	}

	if err := h.db.Create(&athlete).Error; err != nil {
		return err
	}

	go func(a models.Athlete) {
		result := h.sync.Refresh(&a)
		log.Printf("[Athletes] initial schedule sync for %s: %s", a.Slug, result.Message)
	}(athlete)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "athlete": athlete})
}

type updateAthleteRequest struct {
	Name     *string `json:"name"`
	Team     *string `json:"team"`
	League   *string `json:"league"`
	ImageURL *string `json:"imageUrl"`
	Active   *bool   `json:"active"`
	Featured *bool   `json:"featured"`
}

// Update applies a partial edit. Renaming does not change the slug, so
// existing links keep working. A team change invalidates the stored
// schedule and triggers a background resync.
func (h *AthleteHandler) Update(c *fiber.Ctx) error {
	athlete, err := findAthlete(h.db, c.Params("id"))
	if err != nil {
		return err
	}

	var req updateAthleteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	teamChanged := false
	updates := map[string]interface{}{}

	if req.Name != nil {
		if *req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name cannot be empty")
		}
		updates["name"] = *req.Name
	}
	if req.Team != nil {
		if *req.Team == "" {
			return fiber.NewError(fiber.StatusBadRequest, "team cannot be empty")
		}
		if *req.Team != athlete.Team {
			teamChanged = true
		}
		updates["team"] = *req.Team
	}
	if req.League != nil {
		updates["league"] = *req.League
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.Featured != nil {
		updates["featured"] = *req.Featured
	}

	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(athlete).Updates(updates).Error; err != nil {
		return err
	}

	if teamChanged {
		go func(a models.Athlete) {
			result := h.sync.Refresh(&a)
			log.Printf("[Athletes] schedule resync after team change for %s: %s", a.Slug, result.Message)
		}(*athlete)
	}

	return c.JSON(fiber.Map{"success": true, "athlete": athlete})
}

// Delete removes an athlete and their games. Athletes with offers on
// record cannot be deleted; deactivate them instead.
func (h *AthleteHandler) Delete(c *fiber.Ctx) error {
	athlete, err := findAthlete(h.db, c.Params("id"))
	if err != nil {
		return err
	}

	var offerCount int64
	if err := h.db.Model(&models.Offer{}).Where("athlete_id = ?", athlete.ID).Count(&offerCount).Error; err != nil {
		return err
	}
	if offerCount > 0 {
		return fiber.NewError(fiber.StatusConflict, "cannot delete athlete with existing offers; deactivate instead")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("athlete_id = ?", athlete.ID).Delete(&models.Game{}).Error; err != nil {
			return err
		}
		return tx.Delete(athlete).Error
	}); err != nil {
		return err
	}

	log.Printf("[Athletes] deleted athlete %s (%s)", athlete.Slug, athlete.ID)
	return c.JSON(fiber.Map{"success": true, "message": "athlete deleted"})
}

// Resync forces a schedule refresh regardless of how many games are
// already stored.
func (h *AthleteHandler) Resync(c *fiber.Ctx) error {
	athlete, err := findAthlete(h.db, c.Params("id"))
	if err != nil {
		return err
	}

	result := h.sync.Refresh(athlete)
	status := fiber.StatusOK
	if !result.Success {
		status = fiber.StatusBadGateway
	}

	return c.Status(status).JSON(fiber.Map{
		"success": result.Success,
		"count":   result.Count,
		"message": result.Message,
	})
}

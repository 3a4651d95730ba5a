package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/daps/internal/services"
)

// RosterHandler serves the cross-league player directory.
type RosterHandler struct {
	roster *services.RosterService
}

// NewRosterHandler constructs a RosterHandler.
func NewRosterHandler(roster *services.RosterService) *RosterHandler {
	return &RosterHandler{roster: roster}
}

// Players returns the cached player directory, rebuilding it when the
// cache has expired.
func (h *RosterHandler) Players(c *fiber.Ctx) error {
	players := h.roster.Players()
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(players),
		"players": players,
	})
}

// Import creates athlete profiles for directory players that do not
// exist yet.
func (h *RosterHandler) Import(c *fiber.Ctx) error {
	created, err := h.roster.ImportAthletes()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"created": created,
	})
}

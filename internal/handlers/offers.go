package handlers

import (
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/daps/internal/middleware"
	"github.com/example/daps/internal/models"
	"github.com/example/daps/internal/services"
	"github.com/example/daps/internal/utils"
)

// OffersHandler serves fan offer submission, the owner's offer list,
// and the admin review surface.
type OffersHandler struct {
	db    *gorm.DB
	email *services.EmailService
}

// NewOffersHandler constructs an OffersHandler.
func NewOffersHandler(db *gorm.DB, email *services.EmailService) *OffersHandler {
	return &OffersHandler{db: db, email: email}
}

type createOfferRequest struct {
	AthleteID     string `json:"athleteId"`
	GameID        string `json:"gameId"`
	Offered       string `json:"offered"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	ExpDesc       string `json:"expDesc"`
	ExpType       string `json:"expType"`
	GameDesc      string `json:"gameDesc"`
	PaymentMethod string `json:"paymentMethod"`
	PaymentLast4  string `json:"paymentLast4"`
}

// Create submits an offer for the authenticated user. Offers always
// enter in pending status; the amount defaults to 0 when absent or
// unparsable.
func (h *OffersHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.AthleteID == "" || req.CustomerName == "" || req.CustomerEmail == "" {
		return fiber.NewError(fiber.StatusBadRequest, "athleteId, customerName and customerEmail are required")
	}

	athlete, err := findAthlete(h.db, req.AthleteID)
	if err != nil {
		return err
	}

	offered := 0.0
	if req.Offered != "" {
		if v, err := strconv.ParseFloat(req.Offered, 64); err == nil {
			offered = v
		}
	}

	offer := models.Offer{
		UserID:        userID,
		AthleteID:     athlete.ID,
		Status:        models.OfferStatusPending,
		Offered:       offered,
		CustomerName:  req.CustomerName,
		CustomerEmail: strings.ToLower(req.CustomerEmail),
		CustomerPhone: req.CustomerPhone,
		ExpDesc:       req.ExpDesc,
		ExpType:       req.ExpType,
		GameDesc:      req.GameDesc,
		PaymentMethod: req.PaymentMethod,
		PaymentLast4:  req.PaymentLast4,
	}

	if req.GameID != "" {
		gameID, err := uuid.Parse(req.GameID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid gameId")
		}
		var game models.Game
		if err := h.db.First(&game, "id = ? AND athlete_id = ?", gameID, athlete.ID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "game not found for this athlete")
			}
			return err
		}
		offer.GameID = &game.ID
	}

	if err := h.db.Create(&offer).Error; err != nil {
		return err
	}

	log.Printf("[Offers] user %s submitted offer %s for %s", userID, offer.ID, athlete.Slug)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "offer": offer})
}

// ListMine returns the authenticated user's offers, newest first.
func (h *OffersHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var offers []models.Offer
	if err := h.db.Preload("Athlete").Preload("Game").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&offers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "offers": offers})
}

// adminOfferView is the flattened shape the admin dashboard consumes.
func adminOfferView(o models.Offer) fiber.Map {
	method := o.PaymentMethod
	if method == "" {
		method = "card"
	}
	expType := o.ExpType
	if expType == "" {
		expType = "Other"
	}
	gameDesc := o.GameDesc
	if gameDesc == "" {
		gameDesc = "Game TBD"
	}

	account := ""
	if o.User != nil {
		account = o.User.Email
	}

	view := fiber.Map{
		"id":     o.ID,
		"ts":     o.CreatedAt.UnixMilli(),
		"status": o.Status,
		"customer": fiber.Map{
			"name":    o.CustomerName,
			"email":   o.CustomerEmail,
			"phone":   o.CustomerPhone,
			"account": account,
		},
		"payment": fiber.Map{
			"offered":  o.Offered,
			"currency": "USD",
			"method":   method,
			"last4":    o.PaymentLast4,
		},
		"experience": fiber.Map{
			"desc": o.ExpDesc,
			"type": expType,
		},
		"game": fiber.Map{
			"desc": gameDesc,
		},
	}

	if o.Athlete != nil {
		athleteID := o.Athlete.Slug
		if athleteID == "" {
			athleteID = o.Athlete.ID.String()
		}
		view["athlete"] = fiber.Map{
			"id":     athleteID,
			"name":   o.Athlete.Name,
			"team":   o.Athlete.Team,
			"league": o.Athlete.League,
			"image":  o.Athlete.ImageURL,
		}
	}

	return view
}

// List returns every offer for the admin dashboard, newest first.
// ?status= filters to one status.
func (h *OffersHandler) List(c *fiber.Ctx) error {
	pagination := utils.ParsePagination(c)

	status := c.Query("status")
	if status != "" && !models.IsValidOfferStatus(status) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status filter")
	}

	count := h.db.Model(&models.Offer{})
	if status != "" {
		count = count.Where("status = ?", status)
	}
	var total int64
	if err := count.Count(&total).Error; err != nil {
		return err
	}

	query := h.db.Preload("Athlete").Preload("User").Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var offers []models.Offer
	if err := query.Limit(pagination.Limit).Offset(pagination.Offset).Find(&offers).Error; err != nil {
		return err
	}

	views := make([]fiber.Map, 0, len(offers))
	for _, o := range offers {
		views = append(views, adminOfferView(o))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"total":   total,
		"page":    pagination.Page,
		"limit":   pagination.Limit,
		"offers":  views,
	})
}

// Get returns one offer in the admin view shape.
func (h *OffersHandler) Get(c *fiber.Ctx) error {
	offer, err := h.loadOffer(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "offer": adminOfferView(*offer)})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves an offer to a new status. Any valid status may be
// set from any other; the customer is notified by email in the
// background.
func (h *OffersHandler) UpdateStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !models.IsValidOfferStatus(req.Status) {
		return fiber.NewError(fiber.StatusBadRequest, "status must be pending, approved or declined")
	}

	offer, err := h.loadOffer(c.Params("id"))
	if err != nil {
		return err
	}

	if err := h.db.Model(offer).Update("status", req.Status).Error; err != nil {
		return err
	}
	offer.Status = req.Status

	recipient := offer.CustomerEmail
	if recipient == "" && offer.User != nil {
		recipient = offer.User.Email
	}

	go func(o models.Offer, to string) {
		if err := h.email.SendOfferStatusEmail(to, o); err != nil {
			log.Printf("[Offers] status email for offer %s failed: %v", o.ID, err)
		}
	}(*offer, recipient)

	log.Printf("[Offers] offer %s moved to %s", offer.ID, req.Status)
	return c.JSON(fiber.Map{"success": true, "offer": adminOfferView(*offer)})
}

// Delete removes an offer and its attached messages.
func (h *OffersHandler) Delete(c *fiber.Ctx) error {
	offer, err := h.loadOffer(c.Params("id"))
	if err != nil {
		return err
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("offer_id = ?", offer.ID).Delete(&models.OfferMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(offer).Error
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "offer deleted"})
}

func (h *OffersHandler) loadOffer(param string) (*models.Offer, error) {
	id, err := uuid.Parse(param)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid offer id")
	}

	var offer models.Offer
	if err := h.db.Preload("Athlete").Preload("User").First(&offer, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "offer not found")
		}
		return nil, err
	}

	return &offer, nil
}

type offerMessageRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// CreateMessage attaches a note to one of the caller's own offers.
func (h *OffersHandler) CreateMessage(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	offer, err := h.loadOwnedOffer(c.Params("id"), userID)
	if err != nil {
		return err
	}

	var req offerMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Body == "" {
		return fiber.NewError(fiber.StatusBadRequest, "message body required")
	}

	subject := req.Subject
	if subject == "" {
		subject = "Message about your offer"
	}

	msg := models.OfferMessage{
		OfferID: offer.ID,
		To:      "ops",
		Subject: subject,
		Body:    req.Body,
	}
	if err := h.db.Create(&msg).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": msg})
}

// ListMessages returns the notes on one of the caller's own offers.
func (h *OffersHandler) ListMessages(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	offer, err := h.loadOwnedOffer(c.Params("id"), userID)
	if err != nil {
		return err
	}

	var messages []models.OfferMessage
	if err := h.db.Where("offer_id = ?", offer.ID).Order("created_at ASC").Find(&messages).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "messages": messages})
}

// loadOwnedOffer resolves an offer for its owner. Someone else's offer
// reads as not found rather than forbidden, so offer IDs are not
// probeable.
func (h *OffersHandler) loadOwnedOffer(param string, userID uuid.UUID) (*models.Offer, error) {
	offer, err := h.loadOffer(param)
	if err != nil {
		return nil, err
	}
	if offer.UserID != userID {
		return nil, fiber.NewError(fiber.StatusNotFound, "offer not found")
	}
	return offer, nil
}

// ListAllMessages returns every offer message for the admin inbox,
// newest first.
func (h *OffersHandler) ListAllMessages(c *fiber.Ctx) error {
	var messages []models.OfferMessage
	if err := h.db.Preload("Offer").Order("created_at DESC").Find(&messages).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "messages": messages})
}

package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/daps/internal/config"
	"github.com/example/daps/internal/middleware"
	"github.com/example/daps/internal/models"
	"github.com/example/daps/internal/services"
	"github.com/example/daps/internal/utils"
)

const (
	verificationTokenTTL  = 24 * time.Hour
	passwordResetTokenTTL = time.Hour
)

// AuthHandler bundles dependencies for registration, verification and
// session endpoints.
type AuthHandler struct {
	db    *gorm.DB
	cfg   *config.Config
	email *services.EmailService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, email *services.EmailService) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, email: email}
}

type registerRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// Register creates an unverified user account and mails a verification
// link.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" || req.PasswordConfirm == "" {
		return fiber.NewError(fiber.StatusBadRequest, "all fields are required")
	}
	if req.Password != req.PasswordConfirm {
		return fiber.NewError(fiber.StatusBadRequest, "passwords do not match")
	}

	email := strings.ToLower(req.Email)

	var existing models.User
	if err := h.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "email already exists")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	if err := h.issueVerificationToken(user); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "verification email sent",
	})
}

// issueVerificationToken purges any live verification tokens for the
// user, creates a fresh one and dispatches the email best-effort.
func (h *AuthHandler) issueVerificationToken(user models.User) error {
	if err := h.db.Where("user_id = ?", user.ID).Delete(&models.EmailVerification{}).Error; err != nil {
		return err
	}

	token, err := generateOpaqueToken()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate verification token")
	}

	verification := models.EmailVerification{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(verificationTokenTTL),
	}
	if err := h.db.Create(&verification).Error; err != nil {
		return err
	}

	go func() {
		if err := h.email.SendVerificationEmail(user.Email, token); err != nil {
			log.Printf("[Auth] verification email to %s failed: %v", user.Email, err)
		}
	}()

	return nil
}

// Verify redeems an email verification token. Tokens are single-use
// and expired ones are removed on sight.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		return fiber.NewError(fiber.StatusBadRequest, "verification token required")
	}

	var rec models.EmailVerification
	if err := h.db.Where("token = ?", token).First(&rec).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "invalid verification token")
		}
		return err
	}

	if rec.ExpiresAt.Before(time.Now()) {
		if err := h.db.Delete(&rec).Error; err != nil {
			return err
		}
		return fiber.NewError(fiber.StatusBadRequest, "verification token expired")
	}

	now := time.Now()
	if err := h.db.Model(&models.User{}).Where("id = ?", rec.UserID).
		Update("email_verified_at", &now).Error; err != nil {
		return err
	}

	if err := h.db.Delete(&rec).Error; err != nil {
		return err
	}

	log.Printf("[Auth] user %s verified", rec.UserID)
	return c.JSON(fiber.Map{"success": true, "verified": true})
}

type emailRequest struct {
	Email string `json:"email"`
}

// ResendVerification issues a fresh verification token. The response
// never reveals whether the account exists.
func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email required")
	}

	neutral := fiber.Map{"success": true, "message": "if the account exists, a verification email was sent"}

	var user models.User
	if err := h.db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(neutral)
		}
		return err
	}

	if user.EmailVerifiedAt != nil {
		return c.JSON(fiber.Map{"success": true, "message": "email already verified"})
	}

	if err := h.issueVerificationToken(user); err != nil {
		return err
	}

	return c.JSON(neutral)
}

// RequestPasswordReset issues a reset token, purging any previous one
// for the user. The response never reveals whether the account exists.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email required")
	}

	neutral := fiber.Map{"success": true, "message": "if the account exists, a password reset email was sent"}

	var user models.User
	if err := h.db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(neutral)
		}
		return err
	}

	if err := h.db.Where("user_id = ?", user.ID).Delete(&models.PasswordReset{}).Error; err != nil {
		return err
	}

	token, err := generateOpaqueToken()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate reset token")
	}

	reset := models.PasswordReset{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(passwordResetTokenTTL),
	}
	if err := h.db.Create(&reset).Error; err != nil {
		return err
	}

	go func() {
		if err := h.email.SendPasswordResetEmail(user.Email, token); err != nil {
			log.Printf("[Auth] password reset email to %s failed: %v", user.Email, err)
		}
	}()

	return c.JSON(neutral)
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword redeems a reset token and stores the new password hash.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Token == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "token and password required")
	}

	var rec models.PasswordReset
	if err := h.db.Where("token = ?", req.Token).First(&rec).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "invalid reset token")
		}
		return err
	}

	if rec.ExpiresAt.Before(time.Now()) {
		if err := h.db.Delete(&rec).Error; err != nil {
			return err
		}
		return fiber.NewError(fiber.StatusBadRequest, "reset token expired")
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	if err := h.db.Model(&models.User{}).Where("id = ?", rec.UserID).
		Update("password_hash", passwordHash).Error; err != nil {
		return err
	}

	if err := h.db.Delete(&rec).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "password updated"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a verified user and returns a session token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and password required")
	}

	var user models.User
	if err := h.db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	if user.EmailVerifiedAt == nil {
		return fiber.NewError(fiber.StatusForbidden, "please verify your email before signing in")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.Email, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{"success": true, "token": token})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"id":         user.ID,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	})
}

func generateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

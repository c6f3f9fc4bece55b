package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThakurAbhay9457/HostelSwap-Mutual/config"
	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/auth"
	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/notification"
	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/otp"
	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store       store.Store
	tokens      *auth.Tokens
	signupOTPs  *otp.Store
	resetOTPs   *otp.Store
	resetTokens *otp.Store
	notifier    *notification.WorkerPool

	adminKey       string
	vapidPublicKey string

	// exposeSecrets echoes OTPs/tokens in responses for development.
	exposeSecrets bool
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, cfg *config.Config, notifier *notification.WorkerPool) *Handler {
	return &Handler{
		store:          s,
		tokens:         auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		signupOTPs:     otp.NewOTPStore(cfg.Auth.OTPTTL),
		resetOTPs:      otp.NewOTPStore(cfg.Auth.OTPTTL),
		resetTokens:    otp.NewTokenStore(cfg.Auth.ResetTTL),
		notifier:       notifier,
		adminKey:       cfg.Auth.AdminKey,
		vapidPublicKey: cfg.Push.PublicKey,
		exposeSecrets:  cfg.Auth.ExposeSecrets,
	}
}

// Tokens exposes the signer so the router can build auth middleware.
func (h *Handler) Tokens() *auth.Tokens {
	return h.tokens
}

// respondError maps the store and credential error taxonomy onto HTTP
// statuses. Unexpected errors become an opaque 500; nothing partial
// has been committed when one surfaces.
func respondError(c *gin.Context, err error) {
	var (
		validation *store.ValidationError
		capacity   *store.CapacityError
		conflict   *store.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"message": validation.Reason})
	case errors.As(err, &capacity):
		c.JSON(http.StatusConflict, gin.H{"message": capacity.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"message": conflict.Reason})
	case errors.Is(err, store.ErrBlockNotFound),
		errors.Is(err, store.ErrRoomNotFound),
		errors.Is(err, store.ErrResidentNotFound),
		errors.Is(err, store.ErrAdminNotFound),
		errors.Is(err, store.ErrSwapNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, store.ErrRoomFull):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, otp.ErrInvalidCredential):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired OTP"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

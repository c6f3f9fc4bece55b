package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/auth"
	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/model"
	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/notification"
	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/store"
)

type studentSignupRequest struct {
	Name       string        `json:"name" binding:"required"`
	Email      string        `json:"email" binding:"required,email"`
	Password   string        `json:"password" binding:"required,min=6"`
	Hostel     string        `json:"hostel" binding:"required,oneof=block1 block2 block3 block4 block5 block6 block7 block8"`
	BedType    model.BedType `json:"bedType" binding:"required,oneof='1 bedded' '2 bedded' '3 bedded' '4 bedded'"`
	RoomNumber int           `json:"roomNumber" binding:"required,min=1"`
}

// StudentSignup handles POST /api/auth/student/signup. The room
// assignment goes through the directory so bed counters stay honest;
// a failed assignment removes the half-created account again.
func (h *Handler) StudentSignup(c *gin.Context) {
	var req studentSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.FindResidentByEmail(ctx, req.Email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email already registered"})
		return
	} else if !errors.Is(err, store.ErrResidentNotFound) {
		respondError(c, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	resident := model.Resident{
		Name:         req.Name,
		Email:        &req.Email,
		PasswordHash: hash,
	}
	if err := h.store.CreateResident(ctx, &resident); err != nil {
		respondError(c, err)
		return
	}

	if _, err := h.store.AssignRoom(ctx, resident.ID, req.Hostel, req.RoomNumber); err != nil {
		// Without a room the signup is void; drop the account again.
		if derr := h.store.DB().Delete(&model.Resident{}, "id = ?", resident.ID).Error; derr != nil {
			log.Printf("failed to remove resident %s after failed room assignment: %v", resident.ID, derr)
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Signup successful"})
}

type signinRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// StudentSignin handles POST /api/auth/student/signin.
func (h *Handler) StudentSignin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	resident, err := h.store.FindResidentByEmail(c.Request.Context(), req.Email)
	if err != nil || !auth.CheckPassword(resident.PasswordHash, req.Password) {
		// Unknown account and bad password answer identically.
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := h.tokens.Sign(resident.ID, auth.RoleStudent)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  toStudentResponse(resident),
	})
}

type adminSignupRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=6"`
	AdminKey string `json:"adminKey" binding:"required"`
}

// AdminSignup handles POST /api/auth/admin/signup. The admin key check
// stays at this boundary; the core never sees it.
func (h *Handler) AdminSignup(c *gin.Context) {
	var req adminSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if h.adminKey == "" || req.AdminKey != h.adminKey {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid admin key"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.FindAdminByUsername(ctx, req.Username); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username already exists"})
		return
	} else if !errors.Is(err, store.ErrAdminNotFound) {
		respondError(c, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	admin := model.Admin{Username: req.Username, PasswordHash: hash}
	if err := h.store.CreateAdmin(ctx, &admin); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Admin created successfully"})
}

type adminSigninRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminSignin handles POST /api/auth/admin/signin.
func (h *Handler) AdminSignin(c *gin.Context) {
	var req adminSigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	admin, err := h.store.FindAdminByUsername(c.Request.Context(), req.Username)
	if err != nil || !auth.CheckPassword(admin.PasswordHash, req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := h.tokens.Sign(fmt.Sprintf("%d", admin.ID), auth.RoleAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":      admin.ID,
			"name":    admin.Username,
			"isAdmin": true,
		},
	})
}

type phoneSignupRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// PhoneSignup handles POST /api/auth/phone/signup: issues a signup OTP
// for the phone number. Issuing again invalidates the previous code.
func (h *Handler) PhoneSignup(c *gin.Context) {
	var req phoneSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	code, err := h.signupOTPs.Issue(req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"message": "OTP sent"}
	if h.exposeSecrets {
		resp["otp"] = code
	}
	c.JSON(http.StatusOK, resp)
}

type phoneVerifyRequest struct {
	Phone string `json:"phone" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

// PhoneVerify handles POST /api/auth/phone/verify: consumes the OTP,
// creates or verifies the resident and signs them in.
func (h *Handler) PhoneVerify(c *gin.Context) {
	var req phoneVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.signupOTPs.Verify(req.Phone, req.OTP); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	resident, err := h.store.FindResidentByPhone(ctx, req.Phone)
	switch {
	case errors.Is(err, store.ErrResidentNotFound):
		resident = &model.Resident{Phone: &req.Phone, Verified: true}
		if err := h.store.CreateResident(ctx, resident); err != nil {
			respondError(c, err)
			return
		}
	case err != nil:
		respondError(c, err)
		return
	default:
		if err := h.store.MarkVerified(ctx, resident.ID); err != nil {
			respondError(c, err)
			return
		}
	}

	token, err := h.tokens.Sign(resident.ID, auth.RoleStudent)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

type passwordForgotRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Role       string `json:"role" binding:"required,oneof=student admin"`
}

// PasswordForgot handles POST /api/auth/password/forgot: issues a
// reset link token. The response never reveals whether the account
// exists.
func (h *Handler) PasswordForgot(c *gin.Context) {
	var req passwordForgotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	const sent = "If the account exists, a reset link was sent"
	ctx := c.Request.Context()
	if !h.accountExists(ctx, req.Role, req.Identifier) {
		c.JSON(http.StatusOK, gin.H{"message": sent})
		return
	}

	token, err := h.resetTokens.Issue(resetSubject(req.Role, req.Identifier))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"message": sent}
	if h.exposeSecrets {
		resp["token"] = token
	}
	c.JSON(http.StatusOK, resp)
}

type passwordResetRequest struct {
	Identifier  string `json:"identifier" binding:"required"`
	Role        string `json:"role" binding:"required,oneof=student admin"`
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// PasswordReset handles POST /api/auth/password/reset: consumes the
// link token and replaces the account's password.
func (h *Handler) PasswordReset(c *gin.Context) {
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.resetTokens.Verify(resetSubject(req.Role, req.Identifier), req.Token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired token"})
		return
	}

	if err := h.replacePassword(c, req.Role, req.Identifier, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

type passwordOTPForgotRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordOTPForgot handles POST /api/auth/password/otp/forgot: the
// OTP flavor of the reset flow, for students only.
func (h *Handler) PasswordOTPForgot(c *gin.Context) {
	var req passwordOTPForgotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	const sent = "If the account exists, an OTP was sent"
	ctx := c.Request.Context()
	resident, err := h.store.FindResidentByEmail(ctx, req.Email)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"message": sent})
		return
	}

	code, err := h.resetOTPs.Issue(req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifier.Dispatch(notification.Event{
		ResidentID: resident.ID,
		Title:      "Password reset",
		Body:       fmt.Sprintf("Your OTP is %s. It expires in 10 minutes.", code),
	})

	resp := gin.H{"message": sent}
	if h.exposeSecrets {
		resp["otp"] = code
	}
	c.JSON(http.StatusOK, resp)
}

type passwordOTPResetRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// PasswordOTPReset handles POST /api/auth/password/otp/reset.
func (h *Handler) PasswordOTPReset(c *gin.Context) {
	var req passwordOTPResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.resetOTPs.Verify(req.Email, req.OTP); err != nil {
		respondError(c, err)
		return
	}

	if err := h.replacePassword(c, auth.RoleStudent, req.Email, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

func resetSubject(role, identifier string) string {
	return role + ":" + identifier
}

func (h *Handler) accountExists(ctx context.Context, role, identifier string) bool {
	if role == auth.RoleAdmin {
		_, err := h.store.FindAdminByUsername(ctx, identifier)
		return err == nil
	}
	_, err := h.store.FindResidentByEmail(ctx, identifier)
	return err == nil
}

func (h *Handler) replacePassword(c *gin.Context, role, identifier, newPassword string) error {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	ctx := c.Request.Context()
	if role == auth.RoleAdmin {
		return h.store.UpdateAdminPassword(ctx, identifier, hash)
	}
	resident, err := h.store.FindResidentByEmail(ctx, identifier)
	if err != nil {
		return err
	}
	return h.store.UpdateResidentPassword(ctx, resident.ID, hash)
}

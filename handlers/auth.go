package handlers

import (
	"net/http"

	"woolcrafts-backend/middleware"
	"woolcrafts-backend/models"
	"woolcrafts-backend/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Accounts *services.AccountService
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func sessionUser(u *models.User) gin.H {
	return gin.H{
		"id":       u.ID,
		"fullName": u.FullName,
		"email":    u.Email,
		"phone":    u.Phone,
		"role":     u.Role,
	}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupInput
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.Accounts.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Account created successfully",
		"token":   session.Token,
		"user":    sessionUser(session.User),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentials
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   session.Token,
		"user":    sessionUser(session.User),
	})
}

func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req credentials
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.Accounts.AdminLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Admin login successful",
		"token":   session.Token,
		"user":    sessionUser(session.User),
	})
}

// Logout revokes the presented token, if any. Without one it still succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Accounts.Logout(c.Request.Context(), middleware.ClaimsFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

func (h *AuthHandler) CheckAuth(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"authenticated": true,
		"userId":        actor.UserID,
		"role":          actor.Role,
	})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if !bindJSON(c, &req) {
		return
	}

	if err := h.Accounts.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "If an account exists for this email, a password reset link has been sent",
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req services.ResetPasswordInput
	if !bindJSON(c, &req) {
		return
	}

	if err := h.Accounts.ResetPassword(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successfully"})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := h.Accounts.GetProfile(c.Request.Context(), middleware.ActorFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req services.ProfileInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.Accounts.UpdateProfile(c.Request.Context(), middleware.ActorFrom(c).UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated successfully", "user": user})
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.Accounts.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

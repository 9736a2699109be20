package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zoowprime/South-Los-Angeles-RP/internal/config"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/middleware"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/utils"
)

// AuthHandler issues staff tokens for the ops API. Credentials come
// from config; there is no staff user store.
type AuthHandler struct {
	secret []byte
	staff  []config.StaffCredential
}

func NewAuthHandler(secret []byte, staff []config.StaffCredential) *AuthHandler {
	return &AuthHandler{secret: secret, staff: staff}
}

type loginRequest struct {
	StaffID  string `json:"staffId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := middleware.ValidateRequest(req); errs != nil {
		middleware.RespondWithValidationError(c, errs)
		return
	}

	for _, s := range h.staff {
		if s.ID == req.StaffID && utils.CheckSecret(req.Password, s.PasswordHash) {
			token, err := middleware.GenerateToken(h.secret, s.ID, s.Name)
			if err != nil {
				middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"token": token})
			return
		}
	}
	middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
}

package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"driftline/internal/transport/httpdto"
	driftline_errors "driftline/pkg/errors"
)

type AuthHandlers struct {
	auth *AuthService
}

func NewAuthHandlers(auth *AuthService) *AuthHandlers {
	return &AuthHandlers{auth: auth}
}

func (h *AuthHandlers) Register(c *gin.Context) {
	var req httpdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("name, email and password are required", "INVALID_REQUEST"))
		return
	}

	profile, token, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, driftline_errors.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, httpdto.NewErrorResponse("account already exists", "CONFLICT"))
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.AuthResponse{
		Token: token,
		User:  httpdto.UserInfo{ID: profile.UserID, Name: profile.Name, Email: profile.Email},
	}))
}

func (h *AuthHandlers) Login(c *gin.Context) {
	var req httpdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("email and password are required", "INVALID_REQUEST"))
		return
	}

	profile, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, driftline_errors.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("invalid credentials", "UNAUTHORIZED"))
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.AuthResponse{
		Token: token,
		User:  httpdto.UserInfo{ID: profile.UserID, Name: profile.Name, Email: profile.Email},
	}))
}

package handler

import (
	"context"
	"net/http"

	account "memorabilia-market/internal/accountService"
	"memorabilia-market/internal/marketerrors"
	model "memorabilia-market/internal/models"
	"memorabilia-market/services/market/helpers"
	"memorabilia-market/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -destination=mock_account_service.go -package=handler memorabilia-market/services/market/handler AccountServiceInterface

type AccountServiceInterface interface {
	Register(ctx context.Context, reg account.Registration) (model.User, error)
	Login(ctx context.Context, username, password string) (account.Session, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
}

type AuthHandler struct {
	service AccountServiceInterface
}

func NewAuthHandler(service AccountServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterHandler handles POST /api/auth/register
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req helpers.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), account.Registration{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		helpers.RespondError(c, "RegisterHandler", err, map[string]any{"username": req.Username})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, user, "user registered successfully")
	helpers.LogSuccess("RegisterHandler", "user registered", map[string]any{"user_id": user.ID})
}

// LoginHandler handles POST /api/auth/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		helpers.RespondError(c, "LoginHandler", err, map[string]any{"username": req.Username})
		return
	}

	utils.JSONResponse(c, http.StatusOK, session, "login successful")
	helpers.LogSuccess("LoginHandler", "user logged in", map[string]any{"user_id": session.User.ID})
}

// MeHandler handles GET /api/auth/me
func (h *AuthHandler) MeHandler(c *gin.Context) {
	actor, ok := helpers.CurrentUser(c)
	if !ok {
		helpers.RespondError(c, "MeHandler", marketerrors.ErrUnauthorized, nil)
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), actor.UserID)
	if err != nil {
		helpers.RespondError(c, "MeHandler", err, map[string]any{"user_id": actor.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, user, "user retrieved successfully")
}

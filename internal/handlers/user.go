// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/pollopollo-backend/internal/i18n"
	"github.com/javajoker/pollopollo-backend/internal/services"
	"github.com/javajoker/pollopollo-backend/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// POST /users
func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, authResponse)
}

// POST /users/authenticate
func (h *UserHandler) Authenticate(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.userService.Authenticate(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, authResponse)
}

// GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	viewerID, _ := utils.GetUserIDFromContext(c)

	profile, err := h.userService.Find(c.Request.Context(), id, viewerID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, profile)
}

// PUT /users
func (h *UserHandler) Update(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.userService.Update(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUserProfileUpdated),
		"user":    profile,
	})
}

// POST /users/pair
func (h *UserHandler) PairDevice(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.PairDeviceRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.PairDevice(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUserDevicePaired),
	})
}

// GET /users/stats
func (h *UserHandler) Counts(c *gin.Context) {
	counts, err := h.userService.Counts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, counts)
}

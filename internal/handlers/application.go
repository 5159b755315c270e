// internal/handlers/application.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/pollopollo-backend/internal/i18n"
	"github.com/javajoker/pollopollo-backend/internal/models"
	"github.com/javajoker/pollopollo-backend/internal/services"
	"github.com/javajoker/pollopollo-backend/internal/utils"
)

type ApplicationHandler struct {
	applicationService *services.ApplicationService
}

type SubmitApplicationBody struct {
	ProductID  uint   `json:"product_id"`
	Motivation string `json:"motivation"`
}

type UpdateStatusBody struct {
	ReceiverID uint                      `json:"receiver_id"`
	Status     models.ApplicationStatus  `json:"status"`
	Contract   *services.ContractRequest `json:"contract,omitempty"`
}

func NewApplicationHandler(applicationService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
	}
}

// GET /applications?offset=&amount=
func (h *ApplicationHandler) ListOpen(c *gin.Context) {
	views, err := h.applicationService.ListOpen(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.WindowedResponse(c, utils.ApplyWindow(views, utils.GetWindowParams(c)))
}

// GET /applications/completed
func (h *ApplicationHandler) ListCompleted(c *gin.Context) {
	views, err := h.applicationService.ListCompleted(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, views)
}

// GET /applications/filter?country=&city=
func (h *ApplicationHandler) ListFiltered(c *gin.Context) {
	views, err := h.applicationService.ListFiltered(c.Request.Context(), c.Query("country"), c.Query("city"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.WindowedResponse(c, utils.ApplyWindow(views, utils.GetWindowParams(c)))
}

// GET /applications/countries
func (h *ApplicationHandler) Countries(c *gin.Context) {
	countries, err := h.applicationService.DistinctCountries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, countries)
}

// GET /applications/cities?country=
func (h *ApplicationHandler) Cities(c *gin.Context) {
	country := strings.TrimSpace(c.Query("country"))
	if country == "" {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "country"), nil)
		return
	}

	cities, err := h.applicationService.DistinctCities(c.Request.Context(), country)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, cities)
}

// GET /applications/receiver/:receiverId
func (h *ApplicationHandler) ListByReceiver(c *gin.Context) {
	receiverID, ok := idParam(c, "receiverId")
	if !ok {
		return
	}

	views, err := h.applicationService.ListByReceiver(c.Request.Context(), receiverID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, views)
}

// GET /applications/withdrawable/:producerId
func (h *ApplicationHandler) ListWithdrawable(c *gin.Context) {
	producerID, ok := idParam(c, "producerId")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if userID != producerID {
		utils.ForbiddenResponse(c, "")
		return
	}

	views, err := h.applicationService.ListWithdrawableByProducer(c.Request.Context(), producerID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, views)
}

// GET /applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	view, err := h.applicationService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, view)
}

// GET /applications/:id/contract
func (h *ApplicationHandler) ContractInfo(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	info, err := h.applicationService.ContractInfo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, info)
}

// POST /applications
func (h *ApplicationHandler) Submit(c *gin.Context) {
	receiverID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body SubmitApplicationBody
	if !bindJSON(c, &body) {
		return
	}

	result, err := h.applicationService.Submit(c.Request.Context(), &services.SubmitApplicationRequest{
		ReceiverID: receiverID,
		ProductID:  body.ProductID,
		Motivation: body.Motivation,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if result.Outcome == models.SubmitOutcomeUnavailable {
		lang := utils.GetLangFromContext(c)
		utils.ErrorResponse(c, http.StatusConflict, "PRODUCT_UNAVAILABLE", i18n.T(lang, i18n.KeyProductUnavailable), result)
		return
	}
	utils.CreatedResponse(c, result)
}

// PUT /applications/:id/status
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body UpdateStatusBody
	if !bindJSON(c, &body) {
		return
	}
	if body.ReceiverID == 0 {
		body.ReceiverID = userID
	}
	if body.ReceiverID != userID {
		utils.ForbiddenResponse(c, "")
		return
	}

	result, err := h.applicationService.UpdateStatus(c.Request.Context(), &services.UpdateStatusRequest{
		ApplicationID: id,
		ReceiverID:    body.ReceiverID,
		Status:        body.Status,
		Contract:      body.Contract,
		Actor:         services.ActorReceiver,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, result)
}

// PUT /wallet/applications/:id/status
func (h *ApplicationHandler) WalletUpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var body UpdateStatusBody
	if !bindJSON(c, &body) {
		return
	}

	result, err := h.applicationService.UpdateStatus(c.Request.Context(), &services.UpdateStatusRequest{
		ApplicationID: id,
		ReceiverID:    body.ReceiverID,
		Status:        body.Status,
		Contract:      body.Contract,
		Actor:         services.ActorWallet,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, result)
}

// DELETE /applications/:userId/:id
func (h *ApplicationHandler) Delete(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ownerID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if userID != ownerID {
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyApplicationNotDeletable))
		return
	}

	if err := h.applicationService.Delete(c.Request.Context(), ownerID, id); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyApplicationDeleted),
	})
}

// POST /applications/:id/withdraw
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	producerID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.applicationService.Withdraw(c.Request.Context(), producerID, id); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"application_id": id, "withdrawn": true})
}

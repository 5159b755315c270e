// internal/handlers/product.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/pollopollo-backend/internal/services"
	"github.com/javajoker/pollopollo-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
}

type AvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	producerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), producerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, product)
}

// GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, product)
}

// GET /products/producer/:producerId
func (h *ProductHandler) ListByProducer(c *gin.Context) {
	producerID, ok := idParam(c, "producerId")
	if !ok {
		return
	}

	products, err := h.productService.ListByProducer(c.Request.Context(), producerID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, products)
}

// PUT /products/:id/availability
func (h *ProductHandler) SetAvailability(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	producerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req AvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.SetAvailability(c.Request.Context(), producerID, id, *req.Available)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, product)
}

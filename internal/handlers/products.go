// internal/handlers/products.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/nice1tools/market-backend/internal/config"
	"github.com/nice1tools/market-backend/internal/models"
	"github.com/nice1tools/market-backend/internal/services"
	"github.com/nice1tools/market-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
	cfg            *config.Config
}

func NewProductHandler(productService *services.ProductService, cfg *config.Config) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		cfg:            cfg,
	}
}

// GET /products/:kind
func (h *ProductHandler) GetProducts(c *gin.Context) {
	kind := models.FlowKind(c.Param("kind"))
	switch kind {
	case models.FlowKindSale, models.FlowKindRental, models.FlowKindDemo:
	default:
		utils.BadRequestResponse(c, "Unknown flow kind: "+c.Param("kind"), nil)
		return
	}

	session, ok := sessionFor(c, h.cfg)
	if !ok {
		return
	}

	products, err := h.productService.ListProducts(c.Request.Context(), session, kind)
	if err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"products": products})
}

// internal/handlers/metadata.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/nice1tools/market-backend/internal/services"
	"github.com/nice1tools/market-backend/internal/utils"
)

type MetadataHandler struct {
	metadataService *services.MetadataService
}

func NewMetadataHandler(metadataService *services.MetadataService) *MetadataHandler {
	return &MetadataHandler{metadataService: metadataService}
}

// GET /metadata
func (h *MetadataHandler) List(c *gin.Context) {
	account, exists := utils.GetAccountFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	metadata, total, err := h.metadataService.List(account, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(metadata, total, params))
}

// GET /metadata/:product
func (h *MetadataHandler) Get(c *gin.Context) {
	account, exists := utils.GetAccountFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	metadata, err := h.metadataService.Get(account, c.Param("product"))
	if err != nil {
		utils.NotFoundResponse(c, "Product metadata")
		return
	}

	utils.SuccessResponse(c, metadata)
}

// PUT /metadata/:product
func (h *MetadataHandler) Upsert(c *gin.Context) {
	account, exists := utils.GetAccountFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpsertMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid metadata request", err.Error())
		return
	}

	metadata, err := h.metadataService.Upsert(account, c.Param("product"), &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, metadata)
}

// POST /metadata/:product/preview
func (h *MetadataHandler) UploadPreview(c *gin.Context) {
	account, exists := utils.GetAccountFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "Missing file upload", err.Error())
		return
	}
	defer file.Close()

	metadata, err := h.metadataService.UploadPreview(account, c.Param("product"), file, header)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, metadata)
}

// DELETE /metadata/:product
func (h *MetadataHandler) Delete(c *gin.Context) {
	account, exists := utils.GetAccountFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.metadataService.Delete(account, c.Param("product")); err != nil {
		utils.NotFoundResponse(c, "Product metadata")
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "metadata deleted"})
}

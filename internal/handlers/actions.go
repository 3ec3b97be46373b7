// internal/handlers/actions.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nice1tools/market-backend/internal/chain"
	"github.com/nice1tools/market-backend/internal/config"
	"github.com/nice1tools/market-backend/internal/market"
	"github.com/nice1tools/market-backend/internal/models"
	"github.com/nice1tools/market-backend/internal/services"
	"github.com/nice1tools/market-backend/internal/utils"
)

type ActionHandler struct {
	executor         *market.Executor
	inventoryService *services.InventoryService
	cfg              *config.Config
}

func NewActionHandler(cfg *config.Config, inventoryService *services.InventoryService) *ActionHandler {
	return &ActionHandler{
		executor:         market.NewExecutor(cfg.Chain),
		inventoryService: inventoryService,
		cfg:              cfg,
	}
}

func chainErrorStatus(err error) int {
	switch chain.Normalize(err).Kind {
	case chain.KindNoSession:
		return http.StatusUnauthorized
	case chain.KindValidation:
		return http.StatusBadRequest
	case chain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

type toggleRequest struct {
	Kind    models.FlowKind `json:"kind" binding:"required"`
	Product string          `json:"product" binding:"required"`
	IntRef  uint64          `json:"int_ref" binding:"required"`
}

// POST /actions/toggle
func (h *ActionHandler) Toggle(c *gin.Context) {
	session, ok := sessionFor(c, h.cfg)
	if !ok {
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid toggle request", err.Error())
		return
	}

	txID, err := h.executor.ToggleProduct(c.Request.Context(), session, req.Kind, req.Product, req.IntRef)
	if err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"transaction_id": txID})
}

type priceRequest struct {
	Kind    models.FlowKind `json:"kind" binding:"required"`
	Product string          `json:"product" binding:"required"`
	IntRef  uint64          `json:"int_ref" binding:"required"`
	Price   float64         `json:"price" binding:"required"`
}

// POST /actions/price
func (h *ActionHandler) UpdatePrice(c *gin.Context) {
	session, ok := sessionFor(c, h.cfg)
	if !ok {
		return
	}

	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid price request", err.Error())
		return
	}

	txID, err := h.executor.UpdatePrice(c.Request.Context(), session, req.Kind, req.Product, req.IntRef, req.Price)
	if err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"transaction_id": txID})
}

type splitRequest struct {
	Kind      models.FlowKind `json:"kind" binding:"required"`
	Product   string          `json:"product" binding:"required"`
	IntRef    uint64          `json:"int_ref" binding:"required"`
	Receiver1 string          `json:"receiver1" binding:"required"`
	Percent1  uint            `json:"percentr1"`
	Receiver2 string          `json:"receiver2"`
	Percent2  uint            `json:"percentr2"`
}

// POST /actions/split
func (h *ActionHandler) UpdateSplit(c *gin.Context) {
	session, ok := sessionFor(c, h.cfg)
	if !ok {
		return
	}

	var req splitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid split request", err.Error())
		return
	}

	txID, err := h.executor.UpdateSplit(c.Request.Context(), session, req.Kind, req.Product, req.IntRef,
		req.Receiver1, req.Percent1, req.Receiver2, req.Percent2)
	if err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"transaction_id": txID})
}

type demoPeriodRequest struct {
	Product string `json:"product" binding:"required"`
	IntRef  uint64 `json:"int_ref" binding:"required"`
	Period  uint   `json:"period" binding:"required"`
}

// POST /actions/demo-period
func (h *ActionHandler) SetDemoPeriod(c *gin.Context) {
	session, ok := sessionFor(c, h.cfg)
	if !ok {
		return
	}

	var req demoPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid demo period request", err.Error())
		return
	}

	txID, err := h.executor.SetDemoPeriod(c.Request.Context(), session, req.Product, req.IntRef, req.Period)
	if err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"transaction_id": txID})
}

type burnRequest struct {
	IDs  []uint64 `json:"ids" binding:"required"`
	Memo string   `json:"memo"`
}

// POST /actions/burn
func (h *ActionHandler) Burn(c *gin.Context) {
	session, ok := sessionFor(c, h.cfg)
	if !ok {
		return
	}

	var req burnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid burn request", err.Error())
		return
	}

	txIDs, err := h.executor.BurnAssets(c.Request.Context(), session, req.IDs, req.Memo)
	if err != nil {
		c.JSON(chainErrorStatus(err), utils.APIResponse{
			Success: false,
			Data:    gin.H{"transaction_ids": txIDs},
			Error:   &utils.APIError{Code: "BURN_FAILED", Message: err.Error()},
		})
		return
	}

	utils.SuccessResponse(c, gin.H{"transaction_ids": txIDs})
}

type duplicateRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"required"`
	Count    int    `json:"count" binding:"required"`
}

// POST /actions/duplicate
func (h *ActionHandler) Duplicate(c *gin.Context) {
	session, ok := sessionFor(c, h.cfg)
	if !ok {
		return
	}

	var req duplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid duplicate request", err.Error())
		return
	}

	groups, err := h.inventoryService.ListGrouped(c.Request.Context(), session)
	if err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	for _, group := range groups {
		if group.Name == req.Name && group.Category == req.Category {
			txIDs, err := h.executor.DuplicateAsset(c.Request.Context(), session, group.GroupedAsset, req.Count)
			if err != nil {
				c.JSON(chainErrorStatus(err), utils.APIResponse{
					Success: false,
					Data:    gin.H{"transaction_ids": txIDs},
					Error:   &utils.APIError{Code: "DUPLICATE_FAILED", Message: err.Error()},
				})
				return
			}
			utils.SuccessResponse(c, gin.H{"transaction_ids": txIDs})
			return
		}
	}

	utils.NotFoundResponse(c, "Asset group")
}

type modifyRequest struct {
	IDs   []uint64               `json:"ids" binding:"required"`
	Owner string                 `json:"owner"`
	MData map[string]interface{} `json:"mdata" binding:"required"`
}

// POST /actions/modify
func (h *ActionHandler) Modify(c *gin.Context) {
	session, ok := sessionFor(c, h.cfg)
	if !ok {
		return
	}

	var req modifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid modify request", err.Error())
		return
	}

	txIDs, err := h.executor.ModifyAssetData(c.Request.Context(), session, req.Owner, req.IDs, req.MData)
	if err != nil {
		c.JSON(chainErrorStatus(err), utils.APIResponse{
			Success: false,
			Data:    gin.H{"transaction_ids": txIDs},
			Error:   &utils.APIError{Code: "MODIFY_FAILED", Message: err.Error()},
		})
		return
	}

	utils.SuccessResponse(c, gin.H{"transaction_ids": txIDs})
}

// internal/handlers/flows.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/nice1tools/market-backend/internal/assets"
	"github.com/nice1tools/market-backend/internal/chain"
	"github.com/nice1tools/market-backend/internal/config"
	"github.com/nice1tools/market-backend/internal/market"
	"github.com/nice1tools/market-backend/internal/models"
	"github.com/nice1tools/market-backend/internal/services"
	"github.com/nice1tools/market-backend/internal/utils"
)

type FlowHandler struct {
	flows            map[models.FlowKind]*market.Flow
	store            market.FlowStore
	inventoryService *services.InventoryService
	cfg              *config.Config
}

func NewFlowHandler(cfg *config.Config, store market.FlowStore, inventoryService *services.InventoryService) *FlowHandler {
	return &FlowHandler{
		flows: map[models.FlowKind]*market.Flow{
			models.FlowKindSale:   market.NewSaleFlow(cfg.Chain, store),
			models.FlowKindRental: market.NewRentalFlow(cfg.Chain, store),
			models.FlowKindDemo:   market.NewDemoFlow(cfg.Chain, store),
		},
		store:            store,
		inventoryService: inventoryService,
		cfg:              cfg,
	}
}

type ExecuteFlowRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"required"`
	market.FlowParams
}

type RestockRequest struct {
	IntRef uint64   `json:"int_ref" binding:"required"`
	IDs    []uint64 `json:"ids" binding:"required"`
}

// POST /flows/:kind
func (h *FlowHandler) ExecuteFlow(c *gin.Context) {
	flow, ok := h.flowFor(c)
	if !ok {
		return
	}

	session, ok := sessionFor(c, h.cfg)
	if !ok {
		return
	}

	var req ExecuteFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid flow request", err.Error())
		return
	}

	group, found := h.findGroup(c, session, req.Name, req.Category)
	if !found {
		return
	}

	result, err := flow.Execute(c.Request.Context(), session, group, req.FlowParams)
	if err != nil {
		// The result carries the step reached and, after a registration that
		// stuck, the int_ref the caller needs to restock manually.
		c.JSON(chainErrorStatus(err), utils.APIResponse{
			Success: false,
			Data:    result,
			Error:   &utils.APIError{Code: "FLOW_FAILED", Message: err.Error()},
		})
		return
	}

	utils.SuccessResponse(c, result)
}

// POST /flows/:kind/restock
func (h *FlowHandler) Restock(c *gin.Context) {
	flow, ok := h.flowFor(c)
	if !ok {
		return
	}

	session, ok := sessionFor(c, h.cfg)
	if !ok {
		return
	}

	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid restock request", err.Error())
		return
	}

	result, err := flow.Restock(c.Request.Context(), session, req.IDs, req.IntRef)
	if err != nil {
		c.JSON(chainErrorStatus(err), utils.APIResponse{
			Success: false,
			Data:    result,
			Error:   &utils.APIError{Code: "RESTOCK_FAILED", Message: err.Error()},
		})
		return
	}

	utils.SuccessResponse(c, result)
}

// GET /flows/records
func (h *FlowHandler) GetRecords(c *gin.Context) {
	account, exists := utils.GetAccountFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	records, err := h.store.ListByAccount(account)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"records": records})
}

func (h *FlowHandler) flowFor(c *gin.Context) (*market.Flow, bool) {
	kind := models.FlowKind(c.Param("kind"))
	flow, ok := h.flows[kind]
	if !ok {
		utils.BadRequestResponse(c, "Unknown flow kind: "+c.Param("kind"), nil)
		return nil, false
	}
	return flow, true
}

func (h *FlowHandler) findGroup(c *gin.Context, session chain.Session, name, category string) (assets.GroupedAsset, bool) {
	groups, err := h.inventoryService.ListGrouped(c.Request.Context(), session)
	if err != nil {
		utils.ChainErrorResponse(c, err)
		return assets.GroupedAsset{}, false
	}

	for _, group := range groups {
		if group.Name == name && group.Category == category {
			return group.GroupedAsset, true
		}
	}

	utils.NotFoundResponse(c, "Asset group")
	return assets.GroupedAsset{}, false
}

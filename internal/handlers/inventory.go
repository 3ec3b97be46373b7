// internal/handlers/inventory.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/nice1tools/market-backend/internal/chain"
	"github.com/nice1tools/market-backend/internal/config"
	"github.com/nice1tools/market-backend/internal/services"
	"github.com/nice1tools/market-backend/internal/utils"
)

type InventoryHandler struct {
	inventoryService *services.InventoryService
	cfg              *config.Config
}

func NewInventoryHandler(inventoryService *services.InventoryService, cfg *config.Config) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		cfg:              cfg,
	}
}

// sessionFor builds the chain session for the authenticated account. The
// frontend triggers reloads explicitly; nothing here polls the chain.
func sessionFor(c *gin.Context, cfg *config.Config) (chain.Session, bool) {
	account, exists := utils.GetAccountFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return nil, false
	}
	return chain.NewRPCSession(cfg.Chain, account), true
}

// GET /inventory
func (h *InventoryHandler) GetInventory(c *gin.Context) {
	session, ok := sessionFor(c, h.cfg)
	if !ok {
		return
	}

	groups, err := h.inventoryService.ListGrouped(c.Request.Context(), session)
	if err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"groups": groups})
}

// GET /inventory/raw
func (h *InventoryHandler) GetRawAssets(c *gin.Context) {
	session, ok := sessionFor(c, h.cfg)
	if !ok {
		return
	}

	rawAssets, err := h.inventoryService.ListRawAssets(c.Request.Context(), session)
	if err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"assets": rawAssets})
}

// GET /inventory/whitelist
func (h *InventoryHandler) GetWhitelistStatus(c *gin.Context) {
	session, ok := sessionFor(c, h.cfg)
	if !ok {
		return
	}

	whitelisted, err := h.inventoryService.IsWhitelisted(c.Request.Context(), session)
	if err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"whitelisted": whitelisted})
}

package handler

import (
	"strconv"

	"crowdfund-ledger/internal/core/domain"
	"crowdfund-ledger/internal/core/ports"
	"crowdfund-ledger/pkg/apperror"
	"crowdfund-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler exposes ledger reads and the reconciliation check.
type LedgerHandler struct {
	recon ports.ReconciliationService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(recon ports.ReconciliationService) *LedgerHandler {
	return &LedgerHandler{recon: recon}
}

func holderFromPath(c *gin.Context) (domain.HolderRef, error) {
	kind := domain.HolderKind(c.Param("kind"))
	if kind != domain.HolderKindCampaign && kind != domain.HolderKindWallet {
		return domain.HolderRef{}, apperror.Validation("holder kind must be campaign or wallet")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domain.HolderRef{}, apperror.Validation("invalid holder id")
	}
	return domain.HolderRef{Kind: kind, ID: id}, nil
}

// ListEntries handles GET /holders/:kind/:id/ledger.
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	holder, err := holderFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	entries, err := h.recon.ListEntries(c.Request.Context(), holder, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"entries": entries, "page": page})
}

// CheckHolder handles GET /holders/:kind/:id/reconciliation.
func (h *LedgerHandler) CheckHolder(c *gin.Context) {
	holder, err := holderFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.recon.CheckHolder(c.Request.Context(), holder)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}

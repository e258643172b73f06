package handler

import (
	"net/http"

	"github.com/gabito1451/Aframp/internal/adapter/http/dto"
	"github.com/gabito1451/Aframp/internal/core/ports"
	"github.com/gabito1451/Aframp/pkg/apperror"
	"github.com/gabito1451/Aframp/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet session endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// Connect handles POST /api/v1/wallet/connect. A successful connect starts
// the shared balance refresh timer.
func (h *WalletHandler) Connect(c *gin.Context) {
	if err := h.walletSvc.Connect(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	h.walletSvc.StartBalanceRefresh()
	response.OK(c, h.walletSvc.Session())
}

// Disconnect handles POST /api/v1/wallet/disconnect.
func (h *WalletHandler) Disconnect(c *gin.Context) {
	h.walletSvc.Disconnect(c.Request.Context())
	h.walletSvc.StopBalanceRefresh()
	response.OK(c, h.walletSvc.Session())
}

// GetSession handles GET /api/v1/wallet.
func (h *WalletHandler) GetSession(c *gin.Context) {
	response.OK(c, h.walletSvc.Session())
}

// RefreshBalances handles POST /api/v1/wallet/balances/refresh: an on-demand
// refresh outside the timer schedule.
func (h *WalletHandler) RefreshBalances(c *gin.Context) {
	if err := h.walletSvc.RefreshBalances(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, h.walletSvc.Session())
}

// SignTransaction handles POST /api/v1/wallet/sign. Provider refusals come
// back as 422 with the provider's message.
func (h *WalletHandler) SignTransaction(c *gin.Context) {
	var req dto.SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.walletSvc.SignTransaction(c.Request.Context(), req.XDR, req.NetworkPassphrase)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Error != "" {
		response.Error(c, apperror.New("WAL_004", result.Error, http.StatusUnprocessableEntity))
		return
	}
	response.OK(c, result)
}

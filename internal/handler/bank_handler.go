package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zoowprime/South-Los-Angeles-RP/internal/bank"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/history"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/middleware"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/models"
)

// BankAccessor is the slice of the bank service the handler needs;
// tests substitute a mock.
type BankAccessor interface {
	GetOrCreateProfile(userID string) *models.BankProfile
	SetPin(userID, pin string) error
	VerifyPin(ctx context.Context, userID, input string) bank.PinResult
	SetUserStatus(ctx context.Context, userID string, status models.AccountStatus, actorID string) (*models.BankProfile, error)
	AddUserHistory(userID string, e models.HistoryEntry) error
	CreateEnterprise(ctx context.Context, ownerID, name string) (*models.Enterprise, error)
	ResolveEnterprise(ref string) (*models.Enterprise, error)
	SetEnterpriseStatus(ctx context.Context, entID string, status models.AccountStatus, actorID string) (*models.Enterprise, error)
}

// BankBalances is the economy-side dependency: balances for closure
// entries, account provisioning for new enterprises.
type BankBalances interface {
	Balance(userID string) models.BalanceSnapshot
	CreateEnterpriseAccount(entID, name, ownerID string) (*models.EnterpriseAccount, error)
}

type BankHandler struct {
	svc      BankAccessor
	balances BankBalances
}

func NewBankHandler(svc BankAccessor, balances BankBalances) *BankHandler {
	return &BankHandler{svc: svc, balances: balances}
}

func (h *BankHandler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.GetOrCreateProfile(c.Param("userId")))
}

type setPinRequest struct {
	Pin string `json:"pin" validate:"required,min=4,max=8,numeric"`
}

func (h *BankHandler) SetPin(c *gin.Context) {
	var req setPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := middleware.ValidateRequest(req); errs != nil {
		middleware.RespondWithValidationError(c, errs)
		return
	}
	if err := h.svc.SetPin(c.Param("userId"), req.Pin); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type verifyPinRequest struct {
	Pin string `json:"pin" validate:"required"`
}

// VerifyPin returns 200 on success and 403 with the state-machine
// reason (no_pin, locked, wrong, too_many) otherwise.
func (h *BankHandler) VerifyPin(c *gin.Context) {
	var req verifyPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := middleware.ValidateRequest(req); errs != nil {
		middleware.RespondWithValidationError(c, errs)
		return
	}

	res := h.svc.VerifyPin(c.Request.Context(), c.Param("userId"), req.Pin)
	if res.OK {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	body := gin.H{"ok": false, "reason": string(res.Reason)}
	if res.Reason == bank.PinWrong {
		body["attemptsLeft"] = res.AttemptsLeft
	}
	if !res.LockedUntil.IsZero() {
		body["lockedUntil"] = res.LockedUntil.Format(time.RFC3339)
	}
	c.JSON(http.StatusForbidden, body)
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active frozen closed"`
}

func (h *BankHandler) SetStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := middleware.ValidateRequest(req); errs != nil {
		middleware.RespondWithValidationError(c, errs)
		return
	}

	userID := c.Param("userId")
	actorID, _ := middleware.GetStaffID(c)
	status := models.AccountStatus(req.Status)

	profile, err := h.svc.SetUserStatus(c.Request.Context(), userID, status, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	if status == models.StatusClosed {
		balance := h.balances.Balance(userID)
		if err := h.svc.AddUserHistory(userID, models.HistoryEntry{
			Type:         history.TypeClosure,
			Amount:       0,
			BalanceAfter: balance.Bank,
			ActorID:      actorID,
		}); err != nil {
			respondError(c, err)
			return
		}
		profile = h.svc.GetOrCreateProfile(userID)
	}
	c.JSON(http.StatusOK, profile)
}

func (h *BankHandler) GetHistory(c *gin.Context) {
	profile := h.svc.GetOrCreateProfile(c.Param("userId"))
	c.JSON(http.StatusOK, gin.H{"history": profile.History})
}

type createEnterpriseRequest struct {
	OwnerID string `json:"ownerId" validate:"required"`
	Name    string `json:"name" validate:"required,max=64"`
}

func (h *BankHandler) CreateEnterprise(c *gin.Context) {
	var req createEnterpriseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := middleware.ValidateRequest(req); errs != nil {
		middleware.RespondWithValidationError(c, errs)
		return
	}

	ent, err := h.svc.CreateEnterprise(c.Request.Context(), req.OwnerID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	// Open the ledger side so economy operations find the account.
	if _, err := h.balances.CreateEnterpriseAccount(ent.ID, ent.Name, ent.OwnerID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ent)
}

// GetEnterprise resolves by enterprise id or owner id.
func (h *BankHandler) GetEnterprise(c *gin.Context) {
	ent, err := h.svc.ResolveEnterprise(c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ent)
}

func (h *BankHandler) SetEnterpriseStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := middleware.ValidateRequest(req); errs != nil {
		middleware.RespondWithValidationError(c, errs)
		return
	}

	ent, err := h.svc.ResolveEnterprise(c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	actorID, _ := middleware.GetStaffID(c)
	ent, err = h.svc.SetEnterpriseStatus(c.Request.Context(), ent.ID, models.AccountStatus(req.Status), actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ent)
}

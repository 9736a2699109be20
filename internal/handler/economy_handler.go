package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zoowprime/South-Los-Angeles-RP/internal/economy"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/middleware"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/models"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/money"
)

// Ledger is the slice of the economy service the handler needs.
type Ledger interface {
	GetOrCreateAccount(userID string) *models.UserAccount
	Balance(userID string) models.BalanceSnapshot
	ListAccountIDs() []string
	AddMoney(ctx context.Context, userID string, amount int64, kind models.BalanceKind, opts economy.AdjustOptions) (*models.UserAccount, error)
	SetBalance(ctx context.Context, userID string, value int64, kind models.BalanceKind, opts economy.AdjustOptions) (*models.UserAccount, error)
	MoveCashToBank(ctx context.Context, userID string, amount int64, actorID string) (*models.UserAccount, error)
	MoveBankToCash(ctx context.Context, userID string, amount int64, actorID string) (*models.UserAccount, error)
	TransferBetweenUsers(ctx context.Context, fromID, toID string, amount int64, kind models.BalanceKind, actorID string) (*economy.TransferResult, error)
	SetBlacklisted(ctx context.Context, userID string, value bool) (*models.UserAccount, error)
	GetEnterpriseAccount(entID string) (*models.EnterpriseAccount, error)
	EnterpriseBalance(entID string) (models.BalanceSnapshot, error)
	AddEnterpriseMoney(ctx context.Context, entID string, amount int64, kind models.BalanceKind, opts economy.AdjustOptions) (*models.EnterpriseAccount, error)
	TransferUserToEnterprise(ctx context.Context, userID, entID string, amount int64, sourceKind models.BalanceKind, actorID string) (*economy.EnterpriseTransferResult, error)
	TransferEnterpriseToUser(ctx context.Context, entID, userID string, amount int64, targetKind models.BalanceKind, actorID string) (*economy.EnterpriseTransferResult, error)
}

// EnterpriseResolver maps an enterprise id or owner id to the record.
type EnterpriseResolver interface {
	ResolveEnterprise(ref string) (*models.Enterprise, error)
}

type EconomyHandler struct {
	svc      Ledger
	resolver EnterpriseResolver
}

func NewEconomyHandler(svc Ledger, resolver EnterpriseResolver) *EconomyHandler {
	return &EconomyHandler{svc: svc, resolver: resolver}
}

func (h *EconomyHandler) GetAccount(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.GetOrCreateAccount(c.Param("userId")))
}

// ListAccounts returns every known ledger id, the staff overview.
func (h *EconomyHandler) ListAccounts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"userIds": h.svc.ListAccountIDs()})
}

func (h *EconomyHandler) GetBalance(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Balance(c.Param("userId")))
}

type adjustRequest struct {
	Amount string `json:"amount" validate:"required"`
	Kind   string `json:"kind" validate:"required,oneof=cash banque"`
	Reason string `json:"reason" validate:"max=200"`
}

// Adjust applies a signed staff adjustment to one balance side.
func (h *EconomyHandler) Adjust(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := middleware.ValidateRequest(req); errs != nil {
		middleware.RespondWithValidationError(c, errs)
		return
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	actorID, _ := middleware.GetStaffID(c)
	acc, err := h.svc.AddMoney(c.Request.Context(), c.Param("userId"), amount, models.BalanceKind(req.Kind), economy.AdjustOptions{
		Reason:  req.Reason,
		ActorID: actorID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

type setBalanceRequest struct {
	Value  string `json:"value" validate:"required"`
	Kind   string `json:"kind" validate:"required,oneof=cash banque"`
	Reason string `json:"reason" validate:"max=200"`
}

func (h *EconomyHandler) SetBalance(c *gin.Context) {
	var req setBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := middleware.ValidateRequest(req); errs != nil {
		middleware.RespondWithValidationError(c, errs)
		return
	}
	value, err := money.Parse(req.Value)
	if err != nil {
		respondError(c, err)
		return
	}

	actorID, _ := middleware.GetStaffID(c)
	acc, err := h.svc.SetBalance(c.Request.Context(), c.Param("userId"), value, models.BalanceKind(req.Kind), economy.AdjustOptions{
		Reason:  req.Reason,
		ActorID: actorID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

type amountRequest struct {
	Amount string `json:"amount" validate:"required"`
}

// Deposit moves cash to the bank balance.
func (h *EconomyHandler) Deposit(c *gin.Context) {
	h.move(c, h.svc.MoveCashToBank)
}

// Withdraw moves bank balance to cash.
func (h *EconomyHandler) Withdraw(c *gin.Context) {
	h.move(c, h.svc.MoveBankToCash)
}

func (h *EconomyHandler) move(c *gin.Context, op func(ctx context.Context, userID string, amount int64, actorID string) (*models.UserAccount, error)) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := middleware.ValidateRequest(req); errs != nil {
		middleware.RespondWithValidationError(c, errs)
		return
	}
	amount, err := money.ParsePositive(req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	actorID, _ := middleware.GetStaffID(c)
	acc, err := op(c.Request.Context(), c.Param("userId"), amount, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

type transferRequest struct {
	FromID string `json:"fromId" validate:"required"`
	ToID   string `json:"toId" validate:"required"`
	Amount string `json:"amount" validate:"required"`
	Kind   string `json:"kind" validate:"required,oneof=cash banque"`
}

func (h *EconomyHandler) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := middleware.ValidateRequest(req); errs != nil {
		middleware.RespondWithValidationError(c, errs)
		return
	}
	amount, err := money.ParsePositive(req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	actorID, _ := middleware.GetStaffID(c)
	res, err := h.svc.TransferBetweenUsers(c.Request.Context(), req.FromID, req.ToID, amount, models.BalanceKind(req.Kind), actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type blacklistRequest struct {
	Blacklisted *bool `json:"blacklisted" validate:"required"`
}

func (h *EconomyHandler) SetBlacklist(c *gin.Context) {
	var req blacklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := middleware.ValidateRequest(req); errs != nil {
		middleware.RespondWithValidationError(c, errs)
		return
	}

	acc, err := h.svc.SetBlacklisted(c.Request.Context(), c.Param("userId"), *req.Blacklisted)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

func (h *EconomyHandler) GetEnterpriseAccount(c *gin.Context) {
	ent, err := h.resolver.ResolveEnterprise(c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	acc, err := h.svc.GetEnterpriseAccount(ent.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

func (h *EconomyHandler) GetEnterpriseBalance(c *gin.Context) {
	ent, err := h.resolver.ResolveEnterprise(c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	bal, err := h.svc.EnterpriseBalance(ent.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bal)
}

func (h *EconomyHandler) AdjustEnterprise(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := middleware.ValidateRequest(req); errs != nil {
		middleware.RespondWithValidationError(c, errs)
		return
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	ent, err := h.resolver.ResolveEnterprise(c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	actorID, _ := middleware.GetStaffID(c)
	acc, err := h.svc.AddEnterpriseMoney(c.Request.Context(), ent.ID, amount, models.BalanceKind(req.Kind), economy.AdjustOptions{
		Reason:  req.Reason,
		ActorID: actorID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

type enterpriseTransferRequest struct {
	UserID        string `json:"userId" validate:"required"`
	EnterpriseRef string `json:"enterpriseRef" validate:"required"`
	Amount        string `json:"amount" validate:"required"`
	Kind          string `json:"kind" validate:"omitempty,oneof=cash banque"`
}

// PayEnterprise transfers user → enterprise; the user side defaults to
// the bank balance, the wire-transfer flow of the bank card.
func (h *EconomyHandler) PayEnterprise(c *gin.Context) {
	req, ent, amount, ok := h.enterpriseTransfer(c)
	if !ok {
		return
	}
	kind := models.KindBank
	if req.Kind != "" {
		kind = models.BalanceKind(req.Kind)
	}

	actorID, _ := middleware.GetStaffID(c)
	res, err := h.svc.TransferUserToEnterprise(c.Request.Context(), req.UserID, ent.ID, amount, kind, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PaySalary transfers enterprise → user; the user side defaults to cash.
func (h *EconomyHandler) PaySalary(c *gin.Context) {
	req, ent, amount, ok := h.enterpriseTransfer(c)
	if !ok {
		return
	}
	kind := models.KindCash
	if req.Kind != "" {
		kind = models.BalanceKind(req.Kind)
	}

	actorID, _ := middleware.GetStaffID(c)
	res, err := h.svc.TransferEnterpriseToUser(c.Request.Context(), ent.ID, req.UserID, amount, kind, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *EconomyHandler) enterpriseTransfer(c *gin.Context) (enterpriseTransferRequest, *models.Enterprise, int64, bool) {
	var req enterpriseTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return req, nil, 0, false
	}
	if errs := middleware.ValidateRequest(req); errs != nil {
		middleware.RespondWithValidationError(c, errs)
		return req, nil, 0, false
	}
	amount, err := money.ParsePositive(req.Amount)
	if err != nil {
		respondError(c, err)
		return req, nil, 0, false
	}
	ent, err := h.resolver.ResolveEnterprise(req.EnterpriseRef)
	if err != nil {
		respondError(c, err)
		return req, nil, 0, false
	}
	return req, ent, amount, true
}

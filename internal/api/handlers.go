package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sheikh-saqib/point-ledger-service/internal/ledger"
)

// Handler exposes the ledger core over HTTP.
type Handler struct {
	ledger *ledger.Ledger
	log    *slog.Logger
}

// NewHandler creates a Handler over the given ledger core.
func NewHandler(l *ledger.Ledger, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{ledger: l, log: log}
}

// Register mounts all routes on the router.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/point/:id", h.InquireBalance)
	r.GET("/point/:id/histories", h.InquireHistory)
	r.PATCH("/point/:id/charge", h.Charge)
	r.PATCH("/point/:id/use", h.Use)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) InquireBalance(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	balance, err := h.ledger.InquireBalance(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (h *Handler) InquireHistory(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	records, err := h.ledger.InquireHistory(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) Charge(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	amount, ok := amountBody(c)
	if !ok {
		return
	}

	balance, err := h.ledger.Charge(c.Request.Context(), userID, amount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.log.Info("charged points", "user_id", userID, "amount", amount, "balance", balance.Amount)
	c.JSON(http.StatusOK, balance)
}

func (h *Handler) Use(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	amount, ok := amountBody(c)
	if !ok {
		return
	}

	balance, err := h.ledger.Use(c.Request.Context(), userID, amount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.log.Info("used points", "user_id", userID, "amount", amount, "balance", balance.Amount)
	c.JSON(http.StatusOK, balance)
}

// userIDParam parses the :id path segment. On failure it writes a 400 and
// returns ok=false.
func userIDParam(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, false
	}
	return userID, true
}

// amountBody parses the raw numeric request body used by the PATCH
// endpoints (the body is the amount itself, not a JSON object).
func amountBody(c *gin.Context) (int64, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return 0, false
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a whole number"})
		return 0, false
	}
	return amount, true
}

// writeError maps ledger failures to HTTP statuses.
func (h *Handler) writeError(c *gin.Context, err error) {
	var partial *ledger.PartialCommitError

	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrInsufficientBalance):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrLockTimeout):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.As(err, &partial):
		// The stores diverged for this user; needs reconciliation.
		h.log.Error("partial commit", "user_id", partial.UserID, "kind", partial.Kind, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		h.log.Error("unexpected ledger error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

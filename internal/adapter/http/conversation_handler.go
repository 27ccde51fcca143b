package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	domain "github.com/darkangel00016/Voice-Ordering2/internal/entity"
	"github.com/darkangel00016/Voice-Ordering2/internal/logging"
	"github.com/darkangel00016/Voice-Ordering2/internal/usecase"
)

var turnsProcessed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "conversation_turns_total",
		Help: "Conversation turns by outcome",
	},
	[]string{"outcome"},
)

type ConversationHandler struct {
	store       usecase.ConversationStore
	lock        usecase.TurnLock
	turn        *usecase.ProcessTurn
	submit      *usecase.SubmitOrder
	validator   *usecase.OrderValidator
	menu        usecase.MenuSource
	turnTimeout time.Duration
}

func NewConversationHandler(
	store usecase.ConversationStore,
	lock usecase.TurnLock,
	turn *usecase.ProcessTurn,
	submit *usecase.SubmitOrder,
	validator *usecase.OrderValidator,
	menu usecase.MenuSource,
	turnTimeout time.Duration,
) *ConversationHandler {
	if turnTimeout <= 0 {
		turnTimeout = 25 * time.Second
	}
	return &ConversationHandler{
		store:       store,
		lock:        lock,
		turn:        turn,
		submit:      submit,
		validator:   validator,
		menu:        menu,
		turnTimeout: turnTimeout,
	}
}

type createConversationReq struct {
	CustomerID string `json:"customerId"`
}

const greeting = "Welcome! What can I get started for you?"

// Create starts a new ordering session.
func (h *ConversationHandler) Create(c *gin.Context) {
	var req createConversationReq
	_ = c.ShouldBindJSON(&req) // body is optional

	state := domain.NewConversationState(req.CustomerID)
	state = state.WithTurn(domain.NewTurn(domain.RoleAssistant, greeting, nil))
	if err := h.store.Save(c.Request.Context(), state); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"conversationId": state.ID,
		"greeting":       greeting,
		"order":          state.Order,
	})
}

type postMessageReq struct {
	Message string `json:"message" binding:"required"`
}

// PostMessage advances the conversation by one user turn.
func (h *ConversationHandler) PostMessage(c *gin.Context) {
	id := c.Param("id")

	var req postMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	// Turns of one conversation are single-writer; reject concurrent ones.
	ok, err := h.lock.TryLock(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lock_failed"})
		return
	}
	if !ok {
		turnsProcessed.WithLabelValues("conflict").Inc()
		c.JSON(http.StatusConflict, gin.H{"error": usecase.ErrTurnInProgress.Error()})
		return
	}
	defer func() { _ = h.lock.Unlock(context.WithoutCancel(c.Request.Context()), id) }()

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.turnTimeout)
	defer cancel()
	ctx = logging.WithCtx(ctx, logging.From(c))

	state, err := h.store.Load(ctx, id)
	if err != nil {
		h.notFoundOrError(c, err)
		return
	}

	next, err := h.turn.Execute(ctx, state, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMenuUnavailable):
			turnsProcessed.WithLabelValues("menu_unavailable").Inc()
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "menu_unavailable"})
		case errors.Is(err, usecase.ErrReplyGeneration):
			turnsProcessed.WithLabelValues("reply_failed").Inc()
			c.JSON(http.StatusBadGateway, gin.H{"error": "reply_generation_failed"})
		default:
			turnsProcessed.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if err := h.store.Save(ctx, next); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_failed"})
		return
	}

	turnsProcessed.WithLabelValues("ok").Inc()
	last := next.Turns[len(next.Turns)-1]
	c.JSON(http.StatusOK, gin.H{
		"reply":    last.Content,
		"metadata": last.Metadata,
		"order":    next.Order,
	})
}

// Get returns the full conversation state (transcript + order).
func (h *ConversationHandler) Get(c *gin.Context) {
	state, err := h.store.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.notFoundOrError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetOrder returns only the current order.
func (h *ConversationHandler) GetOrder(c *gin.Context) {
	state, err := h.store.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.notFoundOrError(c, err)
		return
	}
	c.JSON(http.StatusOK, state.Order)
}

// ValidateOrder returns a validation preview with corrected totals.
func (h *ConversationHandler) ValidateOrder(c *gin.Context) {
	ctx := c.Request.Context()
	state, err := h.store.Load(ctx, c.Param("id"))
	if err != nil {
		h.notFoundOrError(c, err)
		return
	}
	menu, err := h.menu.Snapshot(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "menu_unavailable"})
		return
	}
	c.JSON(http.StatusOK, h.validator.Validate(state.Order, menu))
}

// Submit runs the authoritative validation pass and, when clean, submits the
// order to fulfillment through the retry policy.
func (h *ConversationHandler) Submit(c *gin.Context) {
	id := c.Param("id")

	ok, err := h.lock.TryLock(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lock_failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": usecase.ErrTurnInProgress.Error()})
		return
	}
	defer func() { _ = h.lock.Unlock(context.WithoutCancel(c.Request.Context()), id) }()

	ctx := logging.WithCtx(c.Request.Context(), logging.From(c))
	out, err := h.submit.Execute(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrConversationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		case errors.Is(err, usecase.ErrMenuUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "menu_unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if !out.Validation.Valid {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"validation": out.Validation})
		return
	}

	status := http.StatusOK
	if !out.Submission.Succeeded() {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{
		"validation": out.Validation,
		"submission": out.Submission,
	})
}

func (h *ConversationHandler) notFoundOrError(c *gin.Context, err error) {
	if errors.Is(err, usecase.ErrConversationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

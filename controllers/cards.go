package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bellapacxx/bingo-engine/game"
	"github.com/bellapacxx/bingo-engine/utils/logger"
)

type buyCardRequest struct {
	Owner string `json:"owner"`
}

type modeRequest struct {
	Auto *bool `json:"auto" binding:"required"`
}

type toggleRequest struct {
	Row *int `json:"row" binding:"required"`
	Col *int `json:"col" binding:"required"`
}

func cardCode(id string) string {
	return "BC-" + strings.ToUpper(strings.ReplaceAll(id, "-", "")[:6])
}

// BuyCard generates a new card awaiting payment
func (ctl *Controller) BuyCard(c *gin.Context) {
	var req buyCardRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctl.mu.Lock()
	grid := ctl.gen.Generate()
	ctl.mu.Unlock()

	id := uuid.NewString()
	card := game.NewCard(id, cardCode(id), grid)
	if err := ctl.repo.CreateCard(c.Request.Context(), req.Owner, card); err != nil {
		logger.Errorf("[HTTP] create card: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create card"})
		return
	}

	c.JSON(http.StatusCreated, card)
}

// ActivateCard marks a card as paid and puts it in the room
func (ctl *Controller) ActivateCard(c *gin.Context) {
	ctx := c.Request.Context()
	card, err := ctl.repo.GetCard(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if card.Status != game.StatusPendingPayment {
		c.JSON(http.StatusConflict, gin.H{"error": "Card is already active", "reason": game.ErrNotEligible.Code})
		return
	}

	card.Status = game.StatusCurrent
	if err := ctl.repo.UpdateCard(ctx, card); err != nil {
		respondError(c, err)
		return
	}
	if err := ctl.session.AddCard(card); err != nil {
		respondError(c, err)
		return
	}

	live, _ := ctl.session.Room().Card(card.ID)
	c.JSON(http.StatusOK, live)
}

// GetCard prefers the live copy in the room over the stored one
func (ctl *Controller) GetCard(c *gin.Context) {
	id := c.Param("id")
	if card, ok := ctl.session.Room().Card(id); ok {
		c.JSON(http.StatusOK, card)
		return
	}
	card, err := ctl.repo.GetCard(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (ctl *Controller) SetMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	added, err := ctl.session.SetMode(c.Param("id"), *req.Auto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"autoMode": *req.Auto, "added": added})
}

func (ctl *Controller) ToggleCell(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	marked, err := ctl.session.Toggle(c.Param("id"), *req.Row, *req.Col)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

// ClaimBingo sends the card's win claim for verification
func (ctl *Controller) ClaimBingo(c *gin.Context) {
	claim, err := ctl.session.Claim(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, claim)
}

func (ctl *Controller) CardStatus(c *gin.Context) {
	st, err := ctl.session.Status(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fullCard": st.FullCard, "line": st.Line, "canClaim": st.Any()})
}

// ListCards returns stored cards, optionally only those of one owner
func (ctl *Controller) ListCards(c *gin.Context) {
	cards, err := ctl.repo.ListCards(c.Request.Context(), c.Query("owner"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

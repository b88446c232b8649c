package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bellapacxx/bingo-engine/game"
	"github.com/bellapacxx/bingo-engine/repository"
	"github.com/bellapacxx/bingo-engine/services"
)

const recentNumbers = 5

// GetGame returns the caller state and the last few numbers
func (ctl *Controller) GetGame(c *gin.Context) {
	st := ctl.drawer.State()
	recent := ctl.session.Room().Recent(recentNumbers)
	display := make([]string, 0, len(recent))
	for _, n := range recent {
		s, _ := game.Format(n)
		display = append(display, s)
	}
	c.JSON(http.StatusOK, gin.H{"game": st, "recent": display})
}

// LatestGame returns the most recently stored game, finished or not
func (ctl *Controller) LatestGame(c *gin.Context) {
	g, err := ctl.repo.LatestGame(c.Request.Context())
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No game played yet"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (ctl *Controller) StartGame(c *gin.Context) {
	st, err := ctl.drawer.StartGame(c.Request.Context())
	if errors.Is(err, services.ErrGameActive) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (ctl *Controller) StopGame(c *gin.Context) {
	err := ctl.drawer.Finish(c.Request.Context())
	if errors.Is(err, services.ErrNoActiveGame) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctl.drawer.State())
}

// RandomPattern generates a pattern for a pattern round
func (ctl *Controller) RandomPattern(c *gin.Context) {
	ctl.mu.Lock()
	name := fmt.Sprintf("Random pattern %d", ctl.rnd.Intn(1000000))
	p := game.RandomPattern(ctl.rnd, name)
	ctl.mu.Unlock()
	c.JSON(http.StatusOK, p)
}

// ListClaims returns recorded claims, optionally for one game
func (ctl *Controller) ListClaims(c *gin.Context) {
	var gameID uint64
	if s := c.Query("game_id"); s != "" {
		var err error
		if gameID, err = strconv.ParseUint(s, 10, 64); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game_id"})
			return
		}
	}
	claims, err := ctl.repo.ListClaims(c.Request.Context(), uint(gameID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, claims)
}

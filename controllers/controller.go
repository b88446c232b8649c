package controllers

import (
	"errors"
	"math/rand"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/bellapacxx/bingo-engine/game"
	"github.com/bellapacxx/bingo-engine/repository"
	"github.com/bellapacxx/bingo-engine/services"
	"github.com/bellapacxx/bingo-engine/utils/logger"
)

// Controller holds what the HTTP handlers need.
type Controller struct {
	repo    repository.Repository
	session *services.Session
	drawer  *services.Drawer

	mu  sync.Mutex
	rnd *rand.Rand
	gen *game.Generator
}

func New(repo repository.Repository, session *services.Session, drawer *services.Drawer, rnd *rand.Rand) *Controller {
	return &Controller{
		repo:    repo,
		session: session,
		drawer:  drawer,
		rnd:     rnd,
		gen:     game.NewGenerator(rnd),
	}
}

// respondError maps domain errors to status codes. Rule rejections carry their reason code.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, game.ErrUnknownCard):
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
	case game.Reason(err) != "":
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "reason": game.Reason(err)})
	case errors.Is(err, game.ErrCellOutOfRange),
		errors.Is(err, game.ErrNumberOutOfRange),
		errors.Is(err, game.ErrInvalidPattern),
		errors.Is(err, game.ErrInvalidSnapshot):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("[HTTP] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

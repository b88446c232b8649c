package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bellapacxx/bingo-engine/controllers"
	"github.com/bellapacxx/bingo-engine/realtime"
)

func SetupRoutes(r *gin.Engine, ctl *controllers.Controller, hub *realtime.Hub) {
	api := r.Group("/api")

	// ----------------------
	// Card routes
	// ----------------------
	api.POST("/cards", ctl.BuyCard)                   // Generate a card awaiting payment
	api.POST("/cards/:id/activate", ctl.ActivateCard) // Payment verified
	api.GET("/cards", ctl.ListCards)                  // ?owner= filters by owner
	api.GET("/cards/:id", ctl.GetCard)
	api.POST("/cards/:id/mode", ctl.SetMode)      // Manual or automatic marking
	api.POST("/cards/:id/toggle", ctl.ToggleCell) // Manual mark
	api.POST("/cards/:id/claim", ctl.ClaimBingo)  // Claim a win
	api.GET("/cards/:id/status", ctl.CardStatus)  // Line / full card

	// ----------------------
	// Game routes
	// ----------------------
	api.GET("/game", ctl.GetGame)
	api.GET("/games/latest", ctl.LatestGame) // Last stored game
	api.POST("/game/start", ctl.StartGame)
	api.POST("/game/stop", ctl.StopGame)
	api.GET("/patterns/random", ctl.RandomPattern)
	api.GET("/claims", ctl.ListClaims)

	// Realtime channel
	r.GET("/ws", gin.WrapH(hub))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": hub.ClientCount(), "timestamp": time.Now()})
	})
}

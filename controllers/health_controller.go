package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Matheus-Salgado02/cinelist/services"
)

type HealthController struct {
	health services.Health
}

func NewHealthController(health services.Health) *HealthController {
	return &HealthController{health: health}
}

// Health always answers 200; dbConnected reflects the store's last probe.
func (c *HealthController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"ok": true, "dbConnected": c.health.Connected()})
}

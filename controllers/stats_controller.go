package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/Chandrasura25/Social-media-backend-case-study/services"
	"github.com/Chandrasura25/Social-media-backend-case-study/utils"
)

// StatsController provides site statistics.
type StatsController struct {
	engagement *services.EngagementService
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(engagement *services.EngagementService) *StatsController {
	return &StatsController{engagement: engagement}
}

// GetStats returns user, post, comment and like counts.
func (s *StatsController) GetStats(ctx *gin.Context) {
	stats, err := s.engagement.Stats(ctx.Request.Context())
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, stats)
}

package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/Chandrasura25/Social-media-backend-case-study/middleware"
	"github.com/Chandrasura25/Social-media-backend-case-study/services"
	"github.com/Chandrasura25/Social-media-backend-case-study/utils"
)

// FollowController manages follow edges.
type FollowController struct {
	engagement *services.EngagementService
}

func NewFollowController(engagement *services.EngagementService) *FollowController {
	return &FollowController{engagement: engagement}
}

func (f *FollowController) Follow(ctx *gin.Context) {
	targetID, err := parseIDParam(ctx, "userIdToFollow")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	if err := f.engagement.FollowUser(ctx.Request.Context(), middleware.CurrentUserID(ctx), targetID); err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.OK(ctx, "You are now following this user")
}

func (f *FollowController) Unfollow(ctx *gin.Context) {
	targetID, err := parseIDParam(ctx, "userIdToUnfollow")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	if err := f.engagement.UnfollowUser(ctx.Request.Context(), middleware.CurrentUserID(ctx), targetID); err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.OK(ctx, "You have unfollowed this user")
}

// Followers lists who follows :userId.
func (f *FollowController) Followers(ctx *gin.Context) {
	userID, err := parseIDParam(ctx, "userId")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	page := pageFromQuery(ctx)
	users, err := f.engagement.Followers(ctx.Request.Context(), userID, page)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	list(ctx, users, page)
}

// Following lists who :userId follows.
func (f *FollowController) Following(ctx *gin.Context) {
	userID, err := parseIDParam(ctx, "userId")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	page := pageFromQuery(ctx)
	users, err := f.engagement.Following(ctx.Request.Context(), userID, page)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	list(ctx, users, page)
}

package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Chandrasura25/Social-media-backend-case-study/apperror"
	"github.com/Chandrasura25/Social-media-backend-case-study/middleware"
	"github.com/Chandrasura25/Social-media-backend-case-study/services"
	"github.com/Chandrasura25/Social-media-backend-case-study/utils"
)

// PostController manages posts, likes, comments and the feed.
type PostController struct {
	engagement *services.EngagementService
	media      utils.MediaStore
}

// NewPostController creates a new PostController instance. A nil media store
// rejects file uploads.
func NewPostController(engagement *services.EngagementService, media utils.MediaStore) *PostController {
	return &PostController{engagement: engagement, media: media}
}

// CreatePost accepts either JSON {text, media, mentionedUsers} or a multipart
// form with text, mentionedUsers and an optional image in "file".
func (p *PostController) CreatePost(ctx *gin.Context) {
	in, err := p.bindCreatePost(ctx)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	post, err := p.engagement.CreatePost(ctx.Request.Context(), middleware.CurrentUserID(ctx), in)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Created(ctx, "Post created successfully", gin.H{"post": post})
}

func (p *PostController) bindCreatePost(ctx *gin.Context) (services.CreatePostInput, error) {
	var in services.CreatePostInput
	if !strings.HasPrefix(ctx.ContentType(), "multipart/") {
		var req struct {
			Text           string `json:"text"`
			Media          string `json:"media"`
			MentionedUsers []uint `json:"mentionedUsers"`
		}
		if err := ctx.ShouldBindJSON(&req); err != nil {
			return in, errInvalidPayload
		}
		return services.CreatePostInput{Text: req.Text, Media: strings.TrimSpace(req.Media), MentionedUsers: req.MentionedUsers}, nil
	}

	in.Text = ctx.PostForm("text")
	mentions, err := parseIDList(ctx.PostFormArray("mentionedUsers"))
	if err != nil {
		return in, err
	}
	in.MentionedUsers = mentions
	if strings.TrimSpace(in.Text) == "" {
		return in, services.ErrTextRequired
	}

	fh, err := ctx.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return in, apperror.NewValidation("File upload error", err)
	}
	if p.media == nil {
		return in, apperror.NewValidation("File uploads are not enabled", nil)
	}
	url, err := p.media.Save(ctx.Request.Context(), middleware.CurrentUserID(ctx), fh)
	if err != nil {
		return in, err
	}
	in.Media = url
	return in, nil
}

// ListPosts returns paginated posts with live like and comment counts.
func (p *PostController) ListPosts(ctx *gin.Context) {
	page := pageFromQuery(ctx)
	posts, err := p.engagement.ListPosts(ctx.Request.Context(), page)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	list(ctx, posts, page)
}

// ListUserPosts returns paginated posts of one user.
func (p *PostController) ListUserPosts(ctx *gin.Context) {
	userID, err := parseIDParam(ctx, "userId")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	page := pageFromQuery(ctx)
	posts, err := p.engagement.ListPostsByUser(ctx.Request.Context(), userID, page)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	list(ctx, posts, page)
}

// GetPost returns a single post.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID, err := parseIDParam(ctx, "postId")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	post, err := p.engagement.GetPost(ctx.Request.Context(), postID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, post)
}

// Feed returns posts by the users the caller follows.
func (p *PostController) Feed(ctx *gin.Context) {
	page := pageFromQuery(ctx)
	posts, err := p.engagement.GetFeed(ctx.Request.Context(), middleware.CurrentUserID(ctx), page)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	list(ctx, posts, page)
}

func (p *PostController) Like(ctx *gin.Context) {
	postID, err := parseIDParam(ctx, "postId")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	if err := p.engagement.LikePost(ctx.Request.Context(), middleware.CurrentUserID(ctx), postID); err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.OK(ctx, "Post liked successfully")
}

func (p *PostController) Unlike(ctx *gin.Context) {
	postID, err := parseIDParam(ctx, "postId")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	if err := p.engagement.UnlikePost(ctx.Request.Context(), middleware.CurrentUserID(ctx), postID); err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.OK(ctx, "Post unliked successfully")
}

// Comment appends a comment to a post.
func (p *PostController) Comment(ctx *gin.Context) {
	postID, err := parseIDParam(ctx, "postId")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	var req struct {
		Text           string `json:"text"`
		MentionedUsers []uint `json:"mentionedUsers"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, errInvalidPayload)
		return
	}

	comment, err := p.engagement.CommentOnPost(ctx.Request.Context(), middleware.CurrentUserID(ctx), postID, req.Text, req.MentionedUsers)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Created(ctx, "Comment added successfully", gin.H{"comment": comment})
}

// Comments lists a post's comments oldest first.
func (p *PostController) Comments(ctx *gin.Context) {
	postID, err := parseIDParam(ctx, "postId")
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	page := pageFromQuery(ctx)
	comments, err := p.engagement.Comments(ctx.Request.Context(), postID, page)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	list(ctx, comments, page)
}

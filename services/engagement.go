package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Chandrasura25/Social-media-backend-case-study/apperror"
	"github.com/Chandrasura25/Social-media-backend-case-study/models"
	"github.com/Chandrasura25/Social-media-backend-case-study/stores"
	"github.com/Chandrasura25/Social-media-backend-case-study/utils"
)

var (
	ErrTextRequired      = apperror.NewValidation("Text is required", nil)
	ErrCallerRequired    = apperror.NewValidation("User ID is required", nil)
	ErrFollowingInvalid  = apperror.NewValidation("User following list is missing or invalid", nil)
	ErrCannotFollowSelf  = apperror.NewValidation("You cannot follow yourself", nil)
	ErrInvalidMentionIDs = apperror.NewValidation("Mentioned users must be valid user ids", nil)
)

// CreatePostInput carries the fields accepted when creating a post.
type CreatePostInput struct {
	Text           string
	Media          string
	MentionedUsers []uint
}

// EngagementService orchestrates posts, likes, comments and follows. Likes,
// comments and follow edges are single-row writes, so concurrent requests
// never lose each other's updates.
type EngagementService struct {
	users    IdentityStore
	posts    ContentStore
	notifier Notifier
	cache    Invalidator
}

// NewEngagementService wires the stores and side-effect sinks. A nil
// notifier or cache disables that side effect.
func NewEngagementService(users IdentityStore, posts ContentStore, notifier Notifier, cache Invalidator) *EngagementService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if cache == nil {
		cache = nopInvalidator{}
	}
	return &EngagementService{users: users, posts: posts, notifier: notifier, cache: cache}
}

// CreatePost persists a post for authorID and notifies each mentioned user.
func (s *EngagementService) CreatePost(ctx context.Context, authorID uint, in CreatePostInput) (*models.Post, error) {
	if authorID == 0 {
		return nil, apperror.ErrUnauthenticated
	}
	text := utils.SanitizeText(in.Text)
	if text == "" {
		return nil, ErrTextRequired
	}
	mentions, err := s.mentionRecipients(ctx, in.MentionedUsers, authorID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:         authorID,
		Text:           text,
		Media:          in.Media,
		MentionedUsers: mentions,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.invalidateLists(ctx)

	postID := post.ID
	for _, uid := range mentions {
		s.notifier.Publish(models.Notification{
			RecipientID: uid,
			ActorID:     authorID,
			Type:        models.NotificationMention,
			PostID:      &postID,
		})
	}
	return post, nil
}

// ListPosts returns one page of all posts, newest first.
func (s *EngagementService) ListPosts(ctx context.Context, page utils.Page) ([]models.Post, error) {
	posts, err := s.posts.List(ctx, stores.PostFilter{}, page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ListPostsByUser returns one page of userID's posts. An unknown user has no posts.
func (s *EngagementService) ListPostsByUser(ctx context.Context, userID uint, page utils.Page) ([]models.Post, error) {
	posts, err := s.posts.List(ctx, stores.ByAuthor(userID), page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("list posts by user %d: %w", userID, err)
	}
	return posts, nil
}

// GetFeed returns posts written by the users callerID follows. The following
// set is read from the edge table on every call; a caller with no follow
// edges gets an empty page.
func (s *EngagementService) GetFeed(ctx context.Context, callerID uint, page utils.Page) ([]models.Post, error) {
	if callerID == 0 {
		return nil, ErrCallerRequired
	}
	ok, err := s.users.Exists(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("load caller %d: %w", callerID, err)
	}
	if !ok {
		return nil, ErrFollowingInvalid
	}
	following, err := s.users.FollowingIDs(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("load following for %d: %w", callerID, err)
	}
	if following == nil {
		following = []uint{}
	}
	posts, err := s.posts.List(ctx, stores.PostFilter{AuthorIDs: following}, page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("list feed for %d: %w", callerID, err)
	}
	return posts, nil
}

// LikePost adds callerID to the post's like set. A repeated like reports
// ErrAlreadyLiked even though the stored set is unchanged.
func (s *EngagementService) LikePost(ctx context.Context, callerID, postID uint) error {
	if callerID == 0 {
		return apperror.ErrUnauthenticated
	}
	ownerID, err := s.postOwner(ctx, postID)
	if err != nil {
		return err
	}
	added, err := s.posts.AddLike(ctx, callerID, postID)
	if err != nil {
		return fmt.Errorf("like post %d: %w", postID, err)
	}
	if !added {
		return apperror.ErrAlreadyLiked
	}
	s.invalidateLists(ctx)

	if ownerID != callerID {
		s.notifier.Publish(models.Notification{
			RecipientID: ownerID,
			ActorID:     callerID,
			Type:        models.NotificationLike,
			PostID:      &postID,
		})
	}
	return nil
}

// UnlikePost removes callerID from the like set. Unliking a post the caller
// never liked succeeds.
func (s *EngagementService) UnlikePost(ctx context.Context, callerID, postID uint) error {
	if callerID == 0 {
		return apperror.ErrUnauthenticated
	}
	if _, err := s.postOwner(ctx, postID); err != nil {
		return err
	}
	if err := s.posts.RemoveLike(ctx, callerID, postID); err != nil {
		return fmt.Errorf("unlike post %d: %w", postID, err)
	}
	s.invalidateLists(ctx)
	return nil
}

// CommentOnPost appends a comment and notifies the post owner and every
// mentioned user. Each recipient is notified independently.
func (s *EngagementService) CommentOnPost(ctx context.Context, callerID, postID uint, text string, mentions []uint) (*models.Comment, error) {
	if callerID == 0 {
		return nil, apperror.ErrUnauthenticated
	}
	text = utils.SanitizeText(text)
	if text == "" {
		return nil, ErrTextRequired
	}
	mentions, err := s.mentionRecipients(ctx, mentions, callerID)
	if err != nil {
		return nil, err
	}
	ownerID, err := s.postOwner(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, UserID: callerID, Text: text}
	if err := s.posts.AppendComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("comment on post %d: %w", postID, err)
	}
	s.invalidateLists(ctx)

	commentID := comment.ID
	if ownerID != callerID {
		s.notifier.Publish(models.Notification{
			RecipientID: ownerID,
			ActorID:     callerID,
			Type:        models.NotificationComment,
			PostID:      &postID,
			CommentID:   &commentID,
		})
	}
	for _, uid := range mentions {
		s.notifier.Publish(models.Notification{
			RecipientID: uid,
			ActorID:     callerID,
			Type:        models.NotificationMention,
			PostID:      &postID,
			CommentID:   &commentID,
		})
	}
	return comment, nil
}

// Comments returns one page of a post's comments in the order they were written.
func (s *EngagementService) Comments(ctx context.Context, postID uint, page utils.Page) ([]models.Comment, error) {
	if _, err := s.postOwner(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.posts.Comments(ctx, postID, page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("list comments for %d: %w", postID, err)
	}
	return comments, nil
}

// GetPost loads a single post with live counts.
func (s *EngagementService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if errors.Is(err, stores.ErrNotFound) {
		return nil, apperror.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load post %d: %w", postID, err)
	}
	return post, nil
}

// FollowUser records that callerID follows targetID. Both users must exist.
// The edge is one row, so the following and followers views can never
// disagree.
func (s *EngagementService) FollowUser(ctx context.Context, callerID, targetID uint) error {
	if callerID == 0 {
		return apperror.ErrUnauthenticated
	}
	if callerID == targetID {
		return ErrCannotFollowSelf
	}
	for _, id := range []uint{callerID, targetID} {
		ok, err := s.users.Exists(ctx, id)
		if err != nil {
			return fmt.Errorf("load user %d: %w", id, err)
		}
		if !ok {
			return apperror.ErrUserNotFound
		}
	}
	created, err := s.users.AddFollow(ctx, callerID, targetID)
	if err != nil {
		return fmt.Errorf("follow %d -> %d: %w", callerID, targetID, err)
	}
	if !created {
		return apperror.ErrAlreadyFollowing
	}
	s.cache.InvalidatePrefix(ctx, utils.FeedCachePrefixFor(callerID))
	return nil
}

// UnfollowUser removes the edge callerID -> targetID. Only the caller has to
// exist; a missing target or absent edge is a no-op.
func (s *EngagementService) UnfollowUser(ctx context.Context, callerID, targetID uint) error {
	if callerID == 0 {
		return apperror.ErrUnauthenticated
	}
	ok, err := s.users.Exists(ctx, callerID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", callerID, err)
	}
	if !ok {
		return apperror.ErrUserNotFound
	}
	if err := s.users.RemoveFollow(ctx, callerID, targetID); err != nil {
		return fmt.Errorf("unfollow %d -> %d: %w", callerID, targetID, err)
	}
	s.cache.InvalidatePrefix(ctx, utils.FeedCachePrefixFor(callerID))
	return nil
}

// Followers lists the users following userID.
func (s *EngagementService) Followers(ctx context.Context, userID uint, page utils.Page) ([]models.User, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.users.Followers(ctx, userID, page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("list followers of %d: %w", userID, err)
	}
	return users, nil
}

// Following lists the users userID follows.
func (s *EngagementService) Following(ctx context.Context, userID uint, page utils.Page) ([]models.User, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.users.Following(ctx, userID, page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("list following of %d: %w", userID, err)
	}
	return users, nil
}

func (s *EngagementService) Stats(ctx context.Context) (Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count users: %w", err)
	}
	totals, err := s.posts.Totals(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count content: %w", err)
	}
	return Stats{Users: users, Posts: totals.Posts, Comments: totals.Comments, Likes: totals.Likes}, nil
}

func (s *EngagementService) postOwner(ctx context.Context, postID uint) (uint, error) {
	ownerID, err := s.posts.OwnerID(ctx, postID)
	if errors.Is(err, stores.ErrNotFound) {
		return 0, apperror.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load post %d: %w", postID, err)
	}
	return ownerID, nil
}

func (s *EngagementService) requireUser(ctx context.Context, userID uint) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", userID, err)
	}
	if !ok {
		return apperror.ErrUserNotFound
	}
	return nil
}

// invalidateLists drops every cached posts page and every cached feed. A
// new like or comment changes the counts shown in any feed containing the post.
func (s *EngagementService) invalidateLists(ctx context.Context) {
	s.cache.InvalidatePrefix(ctx, utils.PostsListCachePrefix)
	s.cache.InvalidatePrefix(ctx, utils.FeedCachePrefix)
}

// mentionRecipients dedupes ids, drops the actor and skips ids with no user
// behind them.
func (s *EngagementService) mentionRecipients(ctx context.Context, ids []uint, actorID uint) ([]uint, error) {
	for _, id := range ids {
		if id == 0 {
			return nil, ErrInvalidMentionIDs
		}
	}
	candidates := utils.WithoutUint(utils.UniqueUint(ids), actorID)
	out := make([]uint, 0, len(candidates))
	for _, id := range candidates {
		ok, err := s.users.Exists(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load mentioned user %d: %w", id, err)
		}
		if ok {
			out = append(out, id)
		}
	}
	return out, nil
}

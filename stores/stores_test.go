package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Chandrasura25/Social-media-backend-case-study/models"
	"github.com/Chandrasura25/Social-media-backend-case-study/stores/storetest"
)

func seedUser(t *testing.T, s *UserStore, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@x.com", PasswordHash: "hash"}
	if err := s.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func TestUserStoreDuplicateEmail(t *testing.T) {
	users := NewUserStore(storetest.Open(t))
	seedUser(t, users, "alice")

	err := users.Create(context.Background(), &models.User{Username: "alice2", Email: "ALICE@x.com", PasswordHash: "h"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	got, err := users.FindByEmail(context.Background(), " Alice@X.com ")
	if err != nil || got.Username != "alice" {
		t.Fatalf("lookup by email: %+v %v", got, err)
	}
	if _, err := users.FindByID(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFollowEdgeIsSymmetric(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(storetest.Open(t))
	a := seedUser(t, users, "a")
	b := seedUser(t, users, "b")

	created, err := users.AddFollow(ctx, a.ID, b.ID)
	if err != nil || !created {
		t.Fatalf("first follow: created=%v err=%v", created, err)
	}
	created, err = users.AddFollow(ctx, a.ID, b.ID)
	if err != nil || created {
		t.Fatalf("second follow should be a no-op: created=%v err=%v", created, err)
	}

	following, _ := users.FollowingIDs(ctx, a.ID)
	followers, _ := users.FollowerIDs(ctx, b.ID)
	if len(following) != 1 || following[0] != b.ID {
		t.Fatalf("a.following = %v", following)
	}
	if len(followers) != 1 || followers[0] != a.ID {
		t.Fatalf("b.followers = %v", followers)
	}

	fs, fg, err := users.FollowCounts(ctx, b.ID)
	if err != nil || fs != 1 || fg != 0 {
		t.Fatalf("counts for b: followers=%d following=%d err=%v", fs, fg, err)
	}

	list, err := users.Followers(ctx, b.ID, 0, 10)
	if err != nil || len(list) != 1 || list[0].Username != "a" {
		t.Fatalf("followers list: %+v %v", list, err)
	}

	if err := users.RemoveFollow(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if err := users.RemoveFollow(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("second unfollow should be a no-op: %v", err)
	}
	followers, _ = users.FollowerIDs(ctx, b.ID)
	if len(followers) != 0 {
		t.Fatalf("expected no followers, got %v", followers)
	}
}

func TestPostCountsAreLive(t *testing.T) {
	ctx := context.Background()
	db := storetest.Open(t)
	users := NewUserStore(db)
	posts := NewPostStore(db)
	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")

	p := &models.Post{UserID: alice.ID, Text: "hello"}
	if err := posts.Create(ctx, p); err != nil {
		t.Fatalf("create post: %v", err)
	}

	added, err := posts.AddLike(ctx, bob.ID, p.ID)
	if err != nil || !added {
		t.Fatalf("like: %v %v", added, err)
	}
	added, err = posts.AddLike(ctx, bob.ID, p.ID)
	if err != nil || added {
		t.Fatalf("duplicate like must not insert: %v %v", added, err)
	}
	for _, text := range []string{"one", "two"} {
		if err := posts.AppendComment(ctx, &models.Comment{PostID: p.ID, UserID: bob.ID, Text: text}); err != nil {
			t.Fatalf("comment: %v", err)
		}
	}

	got, err := posts.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.LikesCount != 1 || got.CommentsCount != 2 {
		t.Fatalf("counts = %d/%d, want 1/2", got.LikesCount, got.CommentsCount)
	}
	if got.User.Username != "alice" {
		t.Fatalf("author not loaded: %+v", got.User)
	}

	if err := posts.RemoveLike(ctx, bob.ID, p.ID); err != nil {
		t.Fatalf("unlike: %v", err)
	}
	list, err := posts.List(ctx, PostFilter{}, 0, 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %v", list, err)
	}
	if list[0].LikesCount != 0 {
		t.Fatalf("likesCount after unlike = %d", list[0].LikesCount)
	}

	comments, err := posts.Comments(ctx, p.ID, 0, 10)
	if err != nil || len(comments) != 2 || comments[0].Text != "one" || comments[1].Text != "two" {
		t.Fatalf("comments out of order: %+v %v", comments, err)
	}
}

func TestPostListPagination(t *testing.T) {
	ctx := context.Background()
	db := storetest.Open(t)
	users := NewUserStore(db)
	posts := NewPostStore(db)
	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")

	created := time.Now()
	for i := 0; i < 5; i++ {
		author := alice.ID
		if i%2 == 1 {
			author = bob.ID
		}
		// identical timestamps exercise the id tie-break
		if err := posts.Create(ctx, &models.Post{UserID: author, Text: "p", CreatedAt: created}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	seen := map[uint]bool{}
	for page := 0; page < 3; page++ {
		items, err := posts.List(ctx, PostFilter{}, page*2, 2)
		if err != nil {
			t.Fatalf("list page %d: %v", page, err)
		}
		for _, p := range items {
			if seen[p.ID] {
				t.Fatalf("post %d returned twice", p.ID)
			}
			seen[p.ID] = true
		}
	}
	if len(seen) != 5 {
		t.Fatalf("expected 5 distinct posts across pages, got %d", len(seen))
	}

	byBob, _ := posts.List(ctx, ByAuthor(bob.ID), 0, 10)
	if len(byBob) != 2 {
		t.Fatalf("bob has %d posts, want 2", len(byBob))
	}
	none, err := posts.List(ctx, PostFilter{AuthorIDs: []uint{}}, 0, 10)
	if err != nil || len(none) != 0 {
		t.Fatalf("empty author set should match nothing: %v %v", none, err)
	}
}

func TestNotificationStore(t *testing.T) {
	ctx := context.Background()
	db := storetest.Open(t)
	users := NewUserStore(db)
	store := NewNotificationStore(db)
	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")

	n := &models.Notification{RecipientID: alice.ID, ActorID: bob.ID, Type: models.NotificationLike}
	if err := store.Create(ctx, n); err != nil {
		t.Fatalf("create: %v", err)
	}
	if c, _ := store.UnreadCount(ctx, alice.ID); c != 1 {
		t.Fatalf("unread = %d", c)
	}
	if err := store.MarkRead(ctx, bob.ID, n.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other users must not mark it read: %v", err)
	}
	if err := store.MarkRead(ctx, alice.ID, n.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if c, _ := store.UnreadCount(ctx, alice.ID); c != 0 {
		t.Fatalf("unread after mark = %d", c)
	}

	removed, err := store.PurgeRead(ctx, time.Now().Add(time.Minute))
	if err != nil || removed != 1 {
		t.Fatalf("purge: removed=%d err=%v", removed, err)
	}
}

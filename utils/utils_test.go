package utils

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Chandrasura25/Social-media-backend-case-study/apperror"
	"github.com/Chandrasura25/Social-media-backend-case-study/config"
)

func TestParsePage(t *testing.T) {
	cases := []struct {
		page, limit string
		want        Page
	}{
		{"", "", Page{Page: 1, Limit: 10}},
		{"3", "25", Page{Page: 3, Limit: 25}},
		{"-1", "0", Page{Page: 1, Limit: 10}},
		{"abc", "500", Page{Page: 1, Limit: 10}},
		{" 2 ", "100", Page{Page: 2, Limit: 100}},
	}
	for _, c := range cases {
		if got := ParsePage(c.page, c.limit); got != c.want {
			t.Errorf("ParsePage(%q, %q) = %+v, want %+v", c.page, c.limit, got, c.want)
		}
	}
	if off := (Page{Page: 3, Limit: 20}).Offset(); off != 40 {
		t.Fatalf("offset = %d, want 40", off)
	}
}

func TestSliceHelpers(t *testing.T) {
	got := UniqueUint([]uint{3, 1, 3, 2, 1})
	if len(got) != 3 || got[0] != 3 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("UniqueUint = %v", got)
	}
	got = WithoutUint([]uint{1, 2, 1, 3}, 1)
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("WithoutUint = %v", got)
	}
	if got := UniqueUint(nil); got == nil || len(got) != 0 {
		t.Fatalf("UniqueUint(nil) should be an empty slice, got %#v", got)
	}
}

func TestMemoryCacheExpiryAndPrefix(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	c.Set(ctx, "posts:1", []byte("a"), time.Minute)
	c.Set(ctx, "posts:2", []byte("b"), time.Minute)
	c.Set(ctx, "feed:7:1", []byte("c"), time.Minute)

	if v, ok := c.Get(ctx, "posts:1"); !ok || string(v) != "a" {
		t.Fatalf("Get posts:1 = %q %v", v, ok)
	}
	c.InvalidatePrefix(ctx, PostsListCachePrefix)
	if _, ok := c.Get(ctx, "posts:2"); ok {
		t.Fatal("posts entries should be gone")
	}
	if _, ok := c.Get(ctx, "feed:7:1"); !ok {
		t.Fatal("feed entry should survive a posts invalidation")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get(ctx, "feed:7:1"); ok {
		t.Fatal("entry should expire after its ttl")
	}
}

func TestMemoryCacheCopiesValue(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	buf := []byte("hello")
	c.Set(ctx, "k", buf, 0)
	buf[0] = 'j'
	if v, _ := c.Get(ctx, "k"); string(v) != "hello" {
		t.Fatalf("cached value aliased the caller's buffer: %q", v)
	}
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	return mr, rc
}

func TestRedisCache(t *testing.T) {
	UseNopLogger()
	ctx := context.Background()
	mr, rc := newMiniredis(t)
	c := NewRedisCache(rc)

	if _, ok := c.Get(ctx, "posts:1"); ok {
		t.Fatal("empty cache should miss")
	}
	c.Set(ctx, "posts:1", []byte("one"), time.Minute)
	c.Set(ctx, FeedCachePrefixFor(9)+"1:10", []byte("feed"), time.Minute)
	if !mr.Exists("cache:posts:1") {
		t.Fatalf("expected namespaced key, have %v", mr.Keys())
	}
	if v, ok := c.Get(ctx, "posts:1"); !ok || string(v) != "one" {
		t.Fatalf("Get = %q %v", v, ok)
	}

	c.InvalidatePrefix(ctx, FeedCachePrefixFor(9))
	if _, ok := c.Get(ctx, FeedCachePrefixFor(9)+"1:10"); ok {
		t.Fatal("feed key should be invalidated")
	}
	if _, ok := c.Get(ctx, "posts:1"); !ok {
		t.Fatal("posts key should survive")
	}

	mr.FastForward(2 * time.Minute)
	if _, ok := c.Get(ctx, "posts:1"); ok {
		t.Fatal("ttl should apply")
	}

	mr.Close()
	if _, ok := c.Get(ctx, "posts:1"); ok {
		t.Fatal("a dead redis reads as a miss")
	}
}

func TestNewCacheFallsBackWithoutRedis(t *testing.T) {
	if _, ok := NewCache(nil).(*MemoryCache); !ok {
		t.Fatal("nil client should select the memory cache")
	}
}

func useJWTSecret(t *testing.T) {
	t.Helper()
	config.Set(config.AppConfig{JWTSecret: "utils-secret", GinPath: filepath.Join(t.TempDir(), "gin.log")})
}

func TestTokenFromHeader(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"Bearer abc":    "abc",
		"bearer   abc ": "abc",
		"abc":           "abc",
		"Token abc":     "Token abc",
	}
	for in, want := range cases {
		if got := TokenFromHeader(in); got != want {
			t.Errorf("TokenFromHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	UseNopLogger()
	useJWTSecret(t)
	SetRedis(nil)

	if _, err := Authenticate(""); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("empty token: %v", err)
	}
	if _, err := Authenticate("not-a-jwt"); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("garbage token: %v", err)
	}

	token, err := GenerateToken(42, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	id, err := Authenticate(token)
	if err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if id.UserID != 42 || id.Token != token || id.TokenID == "" || id.ExpiresAt.IsZero() {
		t.Fatalf("identity = %+v", id)
	}

	expired, _ := GenerateToken(42, -time.Minute)
	if _, err := Authenticate(expired); !apperror.IsType(err, apperror.ForbiddenError) {
		t.Fatalf("expired token should be forbidden: %v", err)
	}

	again, _ := GenerateToken(42, time.Hour)
	if again == token {
		t.Fatal("tokens issued in the same second must differ")
	}

	BlacklistToken(id.TokenID, id.ExpiresAt)
	if _, err := Authenticate(token); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("revoked token accepted: %v", err)
	}
	if _, err := Authenticate(again); err != nil {
		t.Fatalf("revoking one token must not affect another: %v", err)
	}
}

func TestBlacklistUsesRedis(t *testing.T) {
	UseNopLogger()
	useJWTSecret(t)
	mr, rc := newMiniredis(t)
	SetRedis(rc)
	t.Cleanup(func() { SetRedis(nil) })

	BlacklistToken("tok-1", time.Now().Add(time.Minute))
	if !mr.Exists(blacklistKey("tok-1")) {
		t.Fatal("revocation should be written to redis")
	}
	if !IsTokenBlacklisted("tok-1") {
		t.Fatal("token should read as revoked")
	}
	BlacklistToken("tok-2", time.Now().Add(-time.Minute))
	if IsTokenBlacklisted("tok-2") {
		t.Fatal("already expired tokens are not recorded")
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "secret123") || CheckPassword(hash, "secret124") {
		t.Fatal("bcrypt round trip mismatch")
	}
}

func TestSanitizeText(t *testing.T) {
	got := SanitizeText(`  hi <script>alert(1)</script><b>there</b>  `)
	if strings.Contains(got, "<script>") || strings.HasPrefix(got, " ") {
		t.Fatalf("SanitizeText = %q", got)
	}

	if got := SanitizeText("Tom & Jerry, 1 < 2"); got != "Tom & Jerry, 1 < 2" {
		t.Fatalf("plain text should survive unchanged, got %q", got)
	}
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write(content)
	_ = mw.Close()
	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

var testPNG = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

func TestLocalMediaStore(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalMediaStore(dir, "/uploads/", 1024)
	s.now = func() time.Time { return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) }

	url, err := s.Save(context.Background(), 7, fileHeader(t, "a.png", testPNG))
	if err != nil {
		t.Fatalf("png rejected: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/2024/03/09/7-") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("url = %q", url)
	}
	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	if err != nil || !bytes.Equal(stored, testPNG) {
		t.Fatalf("stored file mismatch: %v", err)
	}

	_, err = s.Save(context.Background(), 7, fileHeader(t, "a.png", []byte("just text")))
	if !apperror.IsType(err, apperror.ValidationError) {
		t.Fatalf("text upload should be a validation error: %v", err)
	}

	big := append(append([]byte{}, testPNG...), make([]byte, 2048)...)
	_, err = s.Save(context.Background(), 7, fileHeader(t, "big.png", big))
	if err == nil || !strings.Contains(err.Error(), "File size exceeds") {
		t.Fatalf("oversize upload: %v", err)
	}
}

func TestRetentionCleaner(t *testing.T) {
	UseNopLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan time.Time, 4)
	StartRetentionCleaner(ctx, "test", 10*time.Millisecond, time.Hour, func(_ context.Context, before time.Time) (int64, error) {
		calls <- before
		return 1, nil
	})

	select {
	case before := <-calls:
		if d := time.Since(before); d < time.Hour || d > time.Hour+time.Minute {
			t.Fatalf("cutoff %v is not one retention period ago", before)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cleaner never ran")
	}
}

package routes

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Chandrasura25/Social-media-backend-case-study/config"
	"github.com/Chandrasura25/Social-media-backend-case-study/notify"
	"github.com/Chandrasura25/Social-media-backend-case-study/stores"
	"github.com/Chandrasura25/Social-media-backend-case-study/stores/storetest"
	"github.com/Chandrasura25/Social-media-backend-case-study/utils"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type postView struct {
	ID            uint   `json:"id"`
	UserID        uint   `json:"userId"`
	Text          string `json:"text"`
	Media         string `json:"media"`
	LikesCount    int64  `json:"likesCount"`
	CommentsCount int64  `json:"commentsCount"`
}

type listView struct {
	Items []postView `json:"items"`
}

type testAPI struct {
	t          *testing.T
	engine     *gin.Engine
	hub        *notify.Hub
	dispatcher *notify.Dispatcher
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	utils.UseNopLogger()
	mediaDir := t.TempDir()
	config.Set(config.AppConfig{
		JWTSecret:          "routes-secret",
		GinMode:            "test",
		GinPath:            filepath.Join(t.TempDir(), "gin.log"),
		CacheEnabled:       true,
		RateLimitPerMinute: 10000,
		MediaDir:           mediaDir,
		MediaBaseURL:       "/uploads",
		MediaMaxBytes:      1024 * 1024,
	})
	cfg := config.Get()

	db := storetest.Open(t)
	hub := notify.NewHub()
	dispatcher := notify.NewDispatcher(stores.NewNotificationStore(db), hub, 2, 64)
	t.Cleanup(func() {
		dispatcher.Close()
		hub.Close()
	})

	engine := SetupRouter(Dependencies{
		DB:       db,
		Cache:    utils.NewMemoryCache(),
		Notifier: dispatcher,
		Hub:      hub,
		Media:    utils.NewLocalMediaStore(cfg.MediaDir, cfg.MediaBaseURL, cfg.MediaMaxBytes),
	})
	return &testAPI{t: t, engine: engine, hub: hub, dispatcher: dispatcher}
}

func (a *testAPI) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			a.t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.serve(req)
}

func (a *testAPI) serve(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			a.t.Fatalf("decode %s %s: %v (%s)", req.Method, req.URL, err, rec.Body.String())
		}
	}
	return rec, env
}

func (a *testAPI) expect(rec *httptest.ResponseRecorder, env envelope, status int, message string) {
	a.t.Helper()
	if rec.Code != status {
		a.t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	if message != "" && env.Message != message {
		a.t.Fatalf("message = %q, want %q", env.Message, message)
	}
}

// signup registers name and returns its id and a token.
func (a *testAPI) signup(name string) (uint, string) {
	a.t.Helper()
	rec, env := a.do(http.MethodPost, "/register", "", map[string]string{
		"username": name, "email": name + "@x.com", "password": "secret123",
	})
	a.expect(rec, env, http.StatusCreated, "User registered successfully")

	rec, env = a.do(http.MethodPost, "/login", "", map[string]string{
		"email": name + "@x.com", "password": "secret123",
	})
	a.expect(rec, env, http.StatusOK, "")
	var session struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &session); err != nil || session.Token == "" {
		a.t.Fatalf("login payload %s: %v", env.Data, err)
	}
	return session.User.ID, session.Token
}

func (a *testAPI) posts(path, token string) ([]postView, *httptest.ResponseRecorder) {
	a.t.Helper()
	rec, env := a.do(http.MethodGet, path, token, nil)
	a.expect(rec, env, http.StatusOK, "")
	var lv listView
	if err := json.Unmarshal(env.Data, &lv); err != nil {
		a.t.Fatalf("decode list %s: %v", env.Data, err)
	}
	return lv.Items, rec
}

func TestEngagementScenario(t *testing.T) {
	api := newTestAPI(t)
	_, alice := api.signup("alice")
	_, bob := api.signup("bob")

	rec, env := api.do(http.MethodPost, "/posts", alice, map[string]string{"text": "hello"})
	api.expect(rec, env, http.StatusCreated, "Post created successfully")
	var created struct {
		Post postView `json:"post"`
	}
	_ = json.Unmarshal(env.Data, &created)
	postPath := fmt.Sprintf("/%d", created.Post.ID)

	items, _ := api.posts("/posts", "")
	if len(items) != 1 || items[0].Text != "hello" || items[0].LikesCount != 0 || items[0].CommentsCount != 0 {
		t.Fatalf("unexpected posts %+v", items)
	}

	rec, env = api.do(http.MethodPost, "/posts/like"+postPath, bob, nil)
	api.expect(rec, env, http.StatusOK, "Post liked successfully")
	rec, env = api.do(http.MethodPost, "/posts/like"+postPath, bob, nil)
	api.expect(rec, env, http.StatusBadRequest, "You have already liked this post")

	items, _ = api.posts("/posts", "")
	if items[0].LikesCount != 1 {
		t.Fatalf("likesCount = %d after like", items[0].LikesCount)
	}

	for i := 0; i < 2; i++ {
		rec, env = api.do(http.MethodPost, "/posts/unlike"+postPath, bob, nil)
		api.expect(rec, env, http.StatusOK, "Post unliked successfully")
	}

	rec, env = api.do(http.MethodPost, "/posts/comment"+postPath, bob, map[string]string{"text": "hi"})
	api.expect(rec, env, http.StatusCreated, "Comment added successfully")

	items, _ = api.posts("/posts", "")
	if items[0].LikesCount != 0 || items[0].CommentsCount != 1 {
		t.Fatalf("counts after unlike+comment = %d/%d", items[0].LikesCount, items[0].CommentsCount)
	}

	rec, env = api.do(http.MethodPost, "/posts/like/9999", bob, nil)
	api.expect(rec, env, http.StatusNotFound, "Post not found")
}

func TestLoginErrors(t *testing.T) {
	api := newTestAPI(t)
	api.signup("alice")

	rec, env := api.do(http.MethodPost, "/login", "", map[string]string{"email": "alice@x.com", "password": "nope"})
	api.expect(rec, env, http.StatusUnauthorized, "Invalid password")

	rec, env = api.do(http.MethodPost, "/login", "", map[string]string{"email": "ghost@x.com", "password": "secret123"})
	api.expect(rec, env, http.StatusNotFound, "User not found")

	rec, env = api.do(http.MethodPost, "/register", "", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "secret123",
	})
	api.expect(rec, env, http.StatusBadRequest, "User already exists")
}

func TestAuthOutcomes(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.signup("alice")

	rec, env := api.do(http.MethodPost, "/posts", "", map[string]string{"text": "hello"})
	api.expect(rec, env, http.StatusUnauthorized, "")
	rec, env = api.do(http.MethodGet, "/feed", "garbage", nil)
	api.expect(rec, env, http.StatusForbidden, "Invalid token")

	rec, env = api.do(http.MethodGet, "/me", token, nil)
	api.expect(rec, env, http.StatusOK, "")

	rec, env = api.do(http.MethodPost, "/logout", token, nil)
	api.expect(rec, env, http.StatusOK, "Logged out successfully")
	rec, env = api.do(http.MethodGet, "/me", token, nil)
	api.expect(rec, env, http.StatusForbidden, "Invalid token")
}

func TestFollowFeedAndCache(t *testing.T) {
	api := newTestAPI(t)
	_, alice := api.signup("alice")
	bobID, bob := api.signup("bob")

	items, _ := api.posts("/feed", alice)
	if len(items) != 0 {
		t.Fatalf("feed with no follows should be empty, got %+v", items)
	}

	rec, env := api.do(http.MethodPost, "/posts", bob, map[string]string{"text": "bob here"})
	api.expect(rec, env, http.StatusCreated, "")

	rec, env = api.do(http.MethodPost, fmt.Sprintf("/follow/%d", bobID), alice, nil)
	api.expect(rec, env, http.StatusOK, "You are now following this user")
	rec, env = api.do(http.MethodPost, fmt.Sprintf("/follow/%d", bobID), alice, nil)
	api.expect(rec, env, http.StatusBadRequest, "You are already following this user")
	rec, env = api.do(http.MethodPost, "/follow/9999", alice, nil)
	api.expect(rec, env, http.StatusNotFound, "User not found")

	items, rec = api.posts("/feed", alice)
	if len(items) != 1 || items[0].UserID != bobID {
		t.Fatalf("feed should show bob's post: %+v", items)
	}
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first feed read after follow should miss, got %q", rec.Header().Get("X-Cache"))
	}
	_, rec = api.posts("/feed", alice)
	if rec.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("repeated feed read should hit, got %q", rec.Header().Get("X-Cache"))
	}

	// bob's own feed must not be served from alice's cache entry
	items, _ = api.posts("/feed", bob)
	if len(items) != 0 {
		t.Fatalf("bob follows nobody, feed = %+v", items)
	}

	rec, env = api.do(http.MethodGet, fmt.Sprintf("/users/%d/followers", bobID), "", nil)
	api.expect(rec, env, http.StatusOK, "")
	if !strings.Contains(string(env.Data), `"username":"alice"`) {
		t.Fatalf("bob's followers should list alice: %s", env.Data)
	}

	rec, env = api.do(http.MethodPost, fmt.Sprintf("/unfollow/%d", bobID), alice, nil)
	api.expect(rec, env, http.StatusOK, "You have unfollowed this user")
	rec, env = api.do(http.MethodPost, "/unfollow/9999", alice, nil)
	api.expect(rec, env, http.StatusOK, "You have unfollowed this user")

	items, _ = api.posts("/feed", alice)
	if len(items) != 0 {
		t.Fatalf("feed after unfollow = %+v", items)
	}
}

func TestPostsCacheInvalidatedOnWrite(t *testing.T) {
	api := newTestAPI(t)
	_, alice := api.signup("alice")

	_, rec := api.posts("/posts?page=1&limit=5", "")
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Fatal("first read should miss")
	}
	_, rec = api.posts("/posts?page=1&limit=5", "")
	if rec.Header().Get("X-Cache") != "HIT" {
		t.Fatal("second read should hit")
	}

	rec2, env := api.do(http.MethodPost, "/posts", alice, map[string]string{"text": "fresh"})
	api.expect(rec2, env, http.StatusCreated, "")

	items, rec := api.posts("/posts?page=1&limit=5", "")
	if rec.Header().Get("X-Cache") != "MISS" || len(items) != 1 {
		t.Fatalf("create should invalidate the list: cache=%s items=%d", rec.Header().Get("X-Cache"), len(items))
	}
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

func TestCreatePostWithUpload(t *testing.T) {
	api := newTestAPI(t)
	_, alice := api.signup("alice")

	upload := func(name string, content []byte) (*httptest.ResponseRecorder, envelope) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		_ = mw.WriteField("text", "with picture")
		fw, _ := mw.CreateFormFile("file", name)
		_, _ = fw.Write(content)
		_ = mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/posts", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+alice)
		return api.serve(req)
	}

	rec, env := upload("pic.png", pngBytes)
	api.expect(rec, env, http.StatusCreated, "Post created successfully")
	var created struct {
		Post postView `json:"post"`
	}
	_ = json.Unmarshal(env.Data, &created)
	if !strings.HasPrefix(created.Post.Media, "/uploads/") || !strings.HasSuffix(created.Post.Media, ".png") {
		t.Fatalf("media url = %q", created.Post.Media)
	}

	get := httptest.NewRecorder()
	api.engine.ServeHTTP(get, httptest.NewRequest(http.MethodGet, created.Post.Media, nil))
	if get.Code != http.StatusOK || !bytes.Equal(get.Body.Bytes(), pngBytes) {
		t.Fatalf("uploaded file not served: status %d", get.Code)
	}

	rec, env = upload("notes.txt", []byte("plain text, not an image"))
	api.expect(rec, env, http.StatusBadRequest, "Only JPEG and PNG images are allowed")
}

func TestNotificationsListAndStream(t *testing.T) {
	api := newTestAPI(t)
	srv := httptest.NewServer(api.engine)
	defer srv.Close()

	aliceID, alice := api.signup("alice")
	_, bob := api.signup("bob")

	rec, env := api.do(http.MethodPost, "/posts", alice, map[string]string{"text": "hello"})
	api.expect(rec, env, http.StatusCreated, "")
	var created struct {
		Post postView `json:"post"`
	}
	_ = json.Unmarshal(env.Data, &created)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/notifications/stream", nil)
	req.Header.Set("Authorization", "Bearer "+alice)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stream status %d", resp.StatusCode)
	}

	reader := bufio.NewReader(resp.Body)
	waitFor := func(event string) string {
		t.Helper()
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("reading stream while waiting for %s: %v", event, err)
			}
			if strings.TrimSpace(line) != "event:"+event {
				continue
			}
			data, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("reading %s data: %v", event, err)
			}
			return strings.TrimPrefix(strings.TrimSpace(data), "data:")
		}
	}
	waitFor("ready")
	if api.hub.Subscribers(aliceID) != 1 {
		t.Fatalf("expected one subscriber for alice")
	}

	rec, env = api.do(http.MethodPost, fmt.Sprintf("/posts/like/%d", created.Post.ID), bob, nil)
	api.expect(rec, env, http.StatusOK, "")

	payload := waitFor("notification")
	if !strings.Contains(payload, `"type":"like"`) {
		t.Fatalf("unexpected notification payload %s", payload)
	}
	cancel()

	var listed struct {
		Items []struct {
			ID   uint   `json:"id"`
			Type string `json:"type"`
			Read bool   `json:"read"`
		} `json:"items"`
		Unread int64 `json:"unread"`
	}
	rec, env = api.do(http.MethodGet, "/notifications", alice, nil)
	api.expect(rec, env, http.StatusOK, "")
	_ = json.Unmarshal(env.Data, &listed)
	if len(listed.Items) != 1 || listed.Unread != 1 || listed.Items[0].Type != "like" {
		t.Fatalf("stored notifications: %s", env.Data)
	}

	path := fmt.Sprintf("/notifications/%d/read", listed.Items[0].ID)
	rec, env = api.do(http.MethodPost, path, bob, nil)
	api.expect(rec, env, http.StatusNotFound, "Notification not found")
	rec, env = api.do(http.MethodPost, path, alice, nil)
	api.expect(rec, env, http.StatusOK, "Notification marked as read")
}

func TestStatsAndHealth(t *testing.T) {
	api := newTestAPI(t)
	_, alice := api.signup("alice")
	rec, env := api.do(http.MethodPost, "/posts", alice, map[string]string{"text": "hello"})
	api.expect(rec, env, http.StatusCreated, "")

	rec, env = api.do(http.MethodGet, "/stats", "", nil)
	api.expect(rec, env, http.StatusOK, "")
	if !strings.Contains(string(env.Data), `"userCount":1`) || !strings.Contains(string(env.Data), `"postCount":1`) {
		t.Fatalf("stats = %s", env.Data)
	}

	rec, env = api.do(http.MethodGet, "/health", "", nil)
	api.expect(rec, env, http.StatusOK, "")

	rec, env = api.do(http.MethodGet, "/nowhere", "", nil)
	api.expect(rec, env, http.StatusNotFound, "Route not found")
}

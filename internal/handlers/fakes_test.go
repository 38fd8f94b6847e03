package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/microblog/backend/internal/cache"
	"github.com/anonto42/microblog/backend/internal/middleware"
	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/anonto42/microblog/backend/internal/repositories"
	"github.com/anonto42/microblog/backend/validators"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// In-memory repository fakes behind the same interfaces the handlers use.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]models.User{}}
}

func (r *fakeUserRepo) CreateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetUserByUsername(username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetUsersByIDs(ids []uint) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeGroupRepo struct {
	mu     sync.Mutex
	nextID uint
	groups map[uint]models.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: map[uint]models.Group{}}
}

func (r *fakeGroupRepo) CreateGroup(group *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	group.ID = r.nextID
	r.groups[group.ID] = *group
	return nil
}

func (r *fakeGroupRepo) GetGroupByID(id uint) (*models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &g, nil
}

func (r *fakeGroupRepo) GetGroupBySlug(slug string) (*models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g.Slug == slug {
			g := g
			return &g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGroupRepo) GetGroups() ([]models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Group, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	nextID   uint
	comments []models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{}
}

func (r *fakeCommentRepo) CreateComment(comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	comment.ID = r.nextID
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) GetCommentsByPostID(postID string) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Comment
	for _, cm := range r.comments {
		if cm.PostID == postID {
			out = append(out, cm)
		}
	}
	return out, nil
}

type fakeFollowRepo struct {
	mu      sync.Mutex
	nextID  uint
	follows []models.Follow
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{}
}

func (r *fakeFollowRepo) CreateFollow(follow *models.Follow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	follow.ID = r.nextID
	follow.CreatedAt = time.Now()
	r.follows = append(r.follows, *follow)
	return nil
}

func (r *fakeFollowRepo) DeleteFollow(userID, authorID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.follows[:0]
	for _, f := range r.follows {
		if !(f.UserID == userID && f.AuthorID == authorID) {
			kept = append(kept, f)
		}
	}
	r.follows = kept
	return nil
}

func (r *fakeFollowRepo) IsFollowing(userID, authorID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.follows {
		if f.UserID == userID && f.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFollowRepo) GetFollowedAuthorIDs(userID uint) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint
	for _, f := range r.follows {
		if f.UserID == userID {
			ids = append(ids, f.AuthorID)
		}
	}
	return ids, nil
}

func (r *fakeFollowRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.follows)
}

type fakePostRepo struct {
	mu    sync.Mutex
	seq   int
	base  time.Time
	posts []models.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{base: time.Now().Add(-time.Hour)}
}

func (r *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	post.ID = primitive.NewObjectID()
	// Strictly increasing timestamps keep newest-first ordering deterministic
	post.CreatedAt = r.base.Add(time.Duration(r.seq) * time.Second)
	post.UpdatedAt = post.CreatedAt
	r.posts = append(r.posts, *post)
	return nil
}

func (r *fakePostRepo) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, repositories.ErrPostNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.ID.Hex() == id {
			p := p
			return &p, nil
		}
	}
	return nil, repositories.ErrPostNotFound
}

func (r *fakePostRepo) GetAllPosts(_ context.Context) ([]models.Post, error) {
	return r.filtered(func(models.Post) bool { return true }), nil
}

func (r *fakePostRepo) GetPostsByAuthorID(_ context.Context, authorID uint) ([]models.Post, error) {
	return r.filtered(func(p models.Post) bool { return p.AuthorID == authorID }), nil
}

func (r *fakePostRepo) GetPostsByAuthorIDs(_ context.Context, authorIDs []uint) ([]models.Post, error) {
	set := map[uint]bool{}
	for _, id := range authorIDs {
		set[id] = true
	}
	return r.filtered(func(p models.Post) bool { return set[p.AuthorID] }), nil
}

func (r *fakePostRepo) GetPostsByGroupID(_ context.Context, groupID uint) ([]models.Post, error) {
	return r.filtered(func(p models.Post) bool { return p.GroupID != nil && *p.GroupID == groupID }), nil
}

func (r *fakePostRepo) UpdatePost(_ context.Context, id string, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.posts {
		if p.ID.Hex() == id {
			r.posts[i].Text = post.Text
			r.posts[i].GroupID = post.GroupID
			r.posts[i].ImageURL = post.ImageURL
			r.posts[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return repositories.ErrPostNotFound
}

func (r *fakePostRepo) DeletePost(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.posts {
		if p.ID.Hex() == id {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			return nil
		}
	}
	return repositories.ErrPostNotFound
}

func (r *fakePostRepo) filtered(keep func(models.Post) bool) []models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Post{}
	for _, p := range r.posts {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakePostRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.posts)
}

func (r *fakePostRepo) deleteAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = nil
}

// testEnv wires the handlers over fakes through the same route table the
// router installs.
type testEnv struct {
	e        *echo.Echo
	users    *fakeUserRepo
	groups   *fakeGroupRepo
	comments *fakeCommentRepo
	follows  *fakeFollowRepo
	posts    *fakePostRepo
	cache    *cache.PageCache
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:    newFakeUserRepo(),
		groups:   newFakeGroupRepo(),
		comments: newFakeCommentRepo(),
		follows:  newFakeFollowRepo(),
		posts:    newFakePostRepo(),
		cache:    cache.NewPageCache(cache.DefaultTTL),
	}

	e := echo.New()
	e.Validator = validators.NewValidator()

	authGroup := e.Group("/auth")
	NewAuthHandler(env.users).RegisterAuthRoutes(authGroup)

	contentHandler := NewContentHandler(env.posts, env.users, env.groups, env.comments, env.follows, env.cache)
	contentHandler.RegisterContentRoutes(e)
	e.GET("/profile/:username/", contentHandler.Profile, middleware.OptionalAuth())

	authed := e.Group("", middleware.RequireAuth())
	authed.GET("/follow/", contentHandler.FollowIndex)
	authed.POST("/admin/cache/clear", contentHandler.ClearCache)
	NewAuthoringHandler(env.posts, env.groups, env.comments).RegisterAuthoringRoutes(authed)
	NewFollowHandler(env.follows, env.users).RegisterFollowRoutes(authed)
	NewGroupHandler(env.groups).RegisterGroupRoutes(e, authed)

	env.e = e
	return env
}

// addUser creates a user directly in the fake store
func (env *testEnv) addUser(username string) models.User {
	u := models.User{Username: username, PasswordHash: "x"}
	_ = env.users.CreateUser(&u)
	return u
}

func (env *testEnv) addGroup(title, slug string) models.Group {
	g := models.Group{Title: title, Slug: slug}
	_ = env.groups.CreateGroup(&g)
	return g
}

func (env *testEnv) addPost(author models.User, text string, groupID *uint) models.Post {
	p := models.Post{Text: text, AuthorID: author.ID, GroupID: groupID}
	_ = env.posts.CreatePost(context.Background(), &p)
	return p
}

// token signs a JWT for a user the way the auth handler does
func (env *testEnv) token(user models.User) string {
	claims := &models.JwtCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	t, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(middleware.JWTSecret()))
	if err != nil {
		panic(err)
	}
	return t
}

// requestWithToken runs a request authenticated with a raw token string
func (env *testEnv) requestWithToken(method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func urlEncode(s string) string {
	return url.QueryEscape(s)
}

// request runs a request through the full route table. A non-zero user is
// authenticated via the Authorization header.
func (env *testEnv) request(method, target string, body string, user *models.User) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+env.token(*user))
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/microblog/backend/internal/cache"
	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/anonto42/microblog/backend/internal/pagination"
	"github.com/anonto42/microblog/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// ContentHandler serves the read side: index, group and profile listings,
// post detail and the follow feed. It owns the page cache.
type ContentHandler struct {
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	groupRepository   repositories.GroupRepository
	commentRepository repositories.CommentRepository
	followRepository  repositories.FollowRepository
	pageCache         *cache.PageCache
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	groupRepo repositories.GroupRepository,
	commentRepo repositories.CommentRepository,
	followRepo repositories.FollowRepository,
	pageCache *cache.PageCache,
) *ContentHandler {
	return &ContentHandler{
		postRepository:    postRepo,
		userRepository:    userRepo,
		groupRepository:   groupRepo,
		commentRepository: commentRepo,
		followRepository:  followRepo,
		pageCache:         pageCache,
	}
}

// RegisterContentRoutes registers the public read routes. The index route
// is wrapped in the page cache middleware.
func (h *ContentHandler) RegisterContentRoutes(e *echo.Echo) {
	e.GET("/", h.Index, h.pageCache.Middleware())
	e.GET("/group/:slug/", h.GroupPosts)
	e.GET("/posts/:post_id/", h.PostDetail)
}

// Index lists all posts, newest first
func (h *ContentHandler) Index(c echo.Context) error {
	posts, err := h.postRepository.GetAllPosts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views, err := h.enrichPosts(posts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	page := pagination.Paginate(views, pagination.ParsePage(c.QueryParam("page")))
	return c.JSON(http.StatusOK, echo.Map{"page": page})
}

// GroupPosts lists the posts of one group, newest first
func (h *ContentHandler) GroupPosts(c echo.Context) error {
	group, err := h.groupRepository.GetGroupBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Group not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	posts, err := h.postRepository.GetPostsByGroupID(c.Request().Context(), group.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views, err := h.enrichPosts(posts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	page := pagination.Paginate(views, pagination.ParsePage(c.QueryParam("page")))
	return c.JSON(http.StatusOK, echo.Map{"group": group, "page": page})
}

// Profile lists one author's posts plus whether the viewer follows them
func (h *ContentHandler) Profile(c echo.Context) error {
	author, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	posts, err := h.postRepository.GetPostsByAuthorID(c.Request().Context(), author.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views, err := h.enrichPosts(posts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Anonymous viewers never hit storage for the follow flag
	following := false
	if viewerID := getUserIDFromContext(c); viewerID != 0 {
		following, err = h.followRepository.IsFollowing(viewerID, author.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	page := pagination.Paginate(views, pagination.ParsePage(c.QueryParam("page")))
	return c.JSON(http.StatusOK, echo.Map{
		"author":    author.ToCompact(),
		"page":      page,
		"following": following,
	})
}

// PostDetail returns a post with its author, comments and an empty comment
// form descriptor.
func (h *ContentHandler) PostDetail(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("post_id"))
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	view := models.PostView{Post: *post}
	if author, err := h.userRepository.GetUserByID(post.AuthorID); err == nil {
		view.Author = author.ToCompact()
	}

	comments, err := h.commentRepository.GetCommentsByPostID(post.ID.Hex())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	commentViews, err := h.enrichComments(comments)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"post":     view,
		"comments": commentViews,
		"form":     models.CommentForm{},
	})
}

// FollowIndex lists posts authored by anyone the current user follows
func (h *ContentHandler) FollowIndex(c echo.Context) error {
	userID := getUserIDFromContext(c)

	authorIDs, err := h.followRepository.GetFollowedAuthorIDs(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	posts, err := h.postRepository.GetPostsByAuthorIDs(c.Request().Context(), authorIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views, err := h.enrichPosts(posts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	page := pagination.Paginate(views, pagination.ParsePage(c.QueryParam("page")))
	return c.JSON(http.StatusOK, echo.Map{"page": page})
}

// ClearCache destroys every page cache entry
func (h *ContentHandler) ClearCache(c echo.Context) error {
	h.pageCache.Flush()
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// enrichPosts attaches author info to each post
func (h *ContentHandler) enrichPosts(posts []models.Post) ([]models.PostView, error) {
	authorIDs := make([]uint, 0, len(posts))
	seen := make(map[uint]bool)
	for _, p := range posts {
		if !seen[p.AuthorID] {
			seen[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	users, err := h.userRepository.GetUsersByIDs(authorIDs)
	if err != nil {
		return nil, err
	}
	userMap := make(map[uint]models.UserCompact, len(users))
	for _, u := range users {
		userMap[u.ID] = u.ToCompact()
	}

	views := make([]models.PostView, len(posts))
	for i, p := range posts {
		views[i] = models.PostView{Post: p, Author: userMap[p.AuthorID]}
	}
	return views, nil
}

// enrichComments attaches author info to each comment
func (h *ContentHandler) enrichComments(comments []models.Comment) ([]models.CommentView, error) {
	authorIDs := make([]uint, 0, len(comments))
	seen := make(map[uint]bool)
	for _, cm := range comments {
		if !seen[cm.AuthorID] {
			seen[cm.AuthorID] = true
			authorIDs = append(authorIDs, cm.AuthorID)
		}
	}

	users, err := h.userRepository.GetUsersByIDs(authorIDs)
	if err != nil {
		return nil, err
	}
	userMap := make(map[uint]models.UserCompact, len(users))
	for _, u := range users {
		userMap[u.ID] = u.ToCompact()
	}

	views := make([]models.CommentView, len(comments))
	for i, cm := range comments {
		views[i] = models.CommentView{Comment: cm, Author: userMap[cm.AuthorID]}
	}
	return views, nil
}

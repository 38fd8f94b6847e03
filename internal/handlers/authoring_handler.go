package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/anonto42/microblog/backend/internal/repositories"
	"github.com/anonto42/microblog/backend/validators"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ErrNotAuthor is returned when the acting user tries to modify a post
// they do not own. The outward behavior stays a redirect to the post
// detail view; the sentinel keeps the denial distinguishable from success
// inside the service.
var ErrNotAuthor = errors.New("acting user is not the post author")

// AuthoringHandler serves the write side: create post, edit post, comment
type AuthoringHandler struct {
	postRepository    repositories.PostRepository
	groupRepository   repositories.GroupRepository
	commentRepository repositories.CommentRepository
}

// NewAuthoringHandler creates a new AuthoringHandler
func NewAuthoringHandler(
	postRepo repositories.PostRepository,
	groupRepo repositories.GroupRepository,
	commentRepo repositories.CommentRepository,
) *AuthoringHandler {
	return &AuthoringHandler{
		postRepository:    postRepo,
		groupRepository:   groupRepo,
		commentRepository: commentRepo,
	}
}

// RegisterAuthoringRoutes registers the authenticated write routes
func (h *AuthoringHandler) RegisterAuthoringRoutes(g *echo.Group) {
	g.GET("/create/", h.CreatePostForm)
	g.POST("/create/", h.CreatePost)
	g.GET("/posts/:post_id/edit/", h.EditPostForm)
	g.POST("/posts/:post_id/edit/", h.EditPost)
	g.POST("/posts/:post_id/comment/", h.AddComment)
}

// CreatePostForm returns an empty post form descriptor
func (h *AuthoringHandler) CreatePostForm(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"form": models.PostForm{}, "errors": echo.Map{}})
}

// CreatePost persists a new post with the acting user as author and
// redirects to their profile. Invalid input re-renders the form with
// field errors and writes nothing.
func (h *AuthoringHandler) CreatePost(c echo.Context) error {
	claims := currentUser(c)

	var form models.PostForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(form); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"form": form, "errors": validators.FieldErrors(err)})
	}

	if err := h.checkGroup(form.GroupID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"form": form, "errors": echo.Map{"group_id": "Unknown group."}})
	}

	post := &models.Post{
		Text:     form.Text,
		AuthorID: claims.UserID,
		GroupID:  form.GroupID,
		ImageURL: form.ImageURL,
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.Redirect(http.StatusFound, profilePath(claims.Username))
}

// EditPostForm returns the edit form pre-filled with the post's current
// values. Non-authors are redirected to the post detail view.
func (h *AuthoringHandler) EditPostForm(c echo.Context) error {
	postID := c.Param("post_id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.authorizeAuthor(c, post); err != nil {
		return c.Redirect(http.StatusFound, postDetailPath(postID))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"form":    models.FormFromPost(post),
		"errors":  echo.Map{},
		"is_edit": true,
	})
}

// EditPost updates a post's text, group and image in place. Author and
// creation timestamp never change. Non-authors are redirected to the post
// detail view without modification.
func (h *AuthoringHandler) EditPost(c echo.Context) error {
	postID := c.Param("post_id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.authorizeAuthor(c, post); err != nil {
		return c.Redirect(http.StatusFound, postDetailPath(postID))
	}

	var form models.PostForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(form); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"form": form, "errors": validators.FieldErrors(err), "is_edit": true})
	}

	if err := h.checkGroup(form.GroupID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"form": form, "errors": echo.Map{"group_id": "Unknown group."}, "is_edit": true})
	}

	post.Text = form.Text
	post.GroupID = form.GroupID
	post.ImageURL = form.ImageURL

	if err := h.postRepository.UpdatePost(c.Request().Context(), postID, post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.Redirect(http.StatusFound, postDetailPath(postID))
}

// AddComment attaches a comment to a post. The caller is redirected to
// the post detail view whether or not validation passed; a failed
// submission simply creates nothing.
func (h *AuthoringHandler) AddComment(c echo.Context) error {
	claims := currentUser(c)
	postID := c.Param("post_id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var form models.CommentForm
	if err := c.Bind(&form); err != nil {
		return c.Redirect(http.StatusFound, postDetailPath(postID))
	}

	validate := validator.New()
	if err := validate.Struct(form); err != nil {
		return c.Redirect(http.StatusFound, postDetailPath(postID))
	}

	comment := &models.Comment{
		PostID:   post.ID.Hex(),
		AuthorID: claims.UserID,
		Text:     form.Text,
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.Redirect(http.StatusFound, postDetailPath(postID))
}

// authorizeAuthor checks that the acting user owns the post
func (h *AuthoringHandler) authorizeAuthor(c echo.Context, post *models.Post) error {
	claims := currentUser(c)
	if claims == nil || claims.UserID != post.AuthorID {
		log.Printf("edit denied: user %d is not the author of post %s", getUserIDFromContext(c), post.ID.Hex())
		return ErrNotAuthor
	}
	return nil
}

// checkGroup verifies an optional group reference points at a real group
func (h *AuthoringHandler) checkGroup(groupID *uint) error {
	if groupID == nil {
		return nil
	}
	_, err := h.groupRepository.GetGroupByID(*groupID)
	return err
}

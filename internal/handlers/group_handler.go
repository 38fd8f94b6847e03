package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/anonto42/microblog/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// GroupHandler handles topic board management
type GroupHandler struct {
	groupRepository repositories.GroupRepository
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groupRepo repositories.GroupRepository) *GroupHandler {
	return &GroupHandler{groupRepository: groupRepo}
}

// RegisterGroupRoutes registers group management routes
func (h *GroupHandler) RegisterGroupRoutes(public *echo.Echo, authed *echo.Group) {
	public.GET("/groups", h.ListGroups)
	authed.POST("/groups", h.CreateGroup)
}

// ListGroups returns every topic board
func (h *GroupHandler) ListGroups(c echo.Context) error {
	groups, err := h.groupRepository.GetGroups()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"groups": groups})
}

// CreateGroup creates a new topic board. Slugs are referenced by URLs and
// must be unique.
func (h *GroupHandler) CreateGroup(c echo.Context) error {
	var req models.CreateGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	_, err := h.groupRepository.GetGroupBySlug(req.Slug)
	if err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Slug already taken")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	group := &models.Group{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
	}
	if err := h.groupRepository.CreateGroup(group); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, group)
}

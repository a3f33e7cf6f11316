package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"todolist/internal/service"
)

type createCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (s *Server) handleListCategories(c echo.Context) error {
	categories, err := s.categories.List(c.Request().Context(), currentUserID(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(c echo.Context) error {
	var req createCategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	category, err := s.categories.Create(c.Request().Context(), currentUserID(c), service.CategoryInput{
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, category)
}

func (s *Server) handleDeleteCategory(c echo.Context) error {
	categoryID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid category id"))
	}

	if err := s.categories.Delete(c.Request().Context(), currentUserID(c), categoryID); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

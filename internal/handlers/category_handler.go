package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/services"
)

// CategoryHandler handles category-related requests.
type CategoryHandler struct {
	categoryService services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService services.CategoryServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the request payload for creating a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Type        string `json:"type" binding:"required,category_type"`
	Description string `json:"description" binding:"max=500"`
	Icon        string `json:"icon" binding:"max=50"`
	Color       string `json:"color" binding:"omitempty,hex_color"`
}

// UpdateCategoryRequest represents the request payload for updating a category
type UpdateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
	Icon        string `json:"icon" binding:"max=50"`
	Color       string `json:"color" binding:"omitempty,hex_color"`
}

// CategoryResponse represents a category in the response
type CategoryResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Type        models.CategoryType `json:"type"`
	Description string              `json:"description"`
	Icon        string              `json:"icon"`
	Color       string              `json:"color"`
}

func categoryResponse(cat *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:          cat.ID,
		Name:        cat.Name,
		Type:        cat.Type,
		Description: cat.Description,
		Icon:        cat.Icon,
		Color:       cat.Color,
	}
}

// CreateCategory handles the creation of a new category
// @Summary     Create a category
// @Description Create a new category in the current household
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} CategoryResponse "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Category name already in use"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateCategory(householdID, req.Name, models.CategoryType(req.Type), req.Description, req.Icon, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": categoryResponse(category)})
}

// ListCategories lists the categories of the current household
// @Summary     List categories
// @Description List the categories of the current household
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[CategoryResponse] "Categories"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	categories, err := h.categoryService.GetHouseholdCategories(householdID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// GetCategory retrieves a single category
// @Summary     Get a category
// @Description Get a category in the current household
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       id path string true "Category ID"
// @Success     200 {object} CategoryResponse "Category"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(householdID, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": categoryResponse(category)})
}

// UpdateCategory updates a category
// @Summary     Update a category
// @Description Update a category's name and presentation fields
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       id path string true "Category ID"
// @Param       request body UpdateCategoryRequest true "Fields to update"
// @Success     200 {object} CategoryResponse "Category updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Category name already in use"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.UpdateCategory(householdID, categoryID, req.Name, req.Description, req.Icon, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": categoryResponse(category)})
}

// DeleteCategory deletes a category
// @Summary     Delete a category
// @Description Delete a category; existing transactions keep their reference
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Household-ID header string true "Household ID"
// @Param       id path string true "Category ID"
// @Success     200 {object} map[string]string "Category deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categoryService.DeleteCategory(householdID, categoryID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tally/internal/errors"
	"tally/internal/ledger"
	"tally/internal/services"
)

// CategoryHandler handles category-related requests.
type CategoryHandler struct {
	newService func(l *ledger.Ledger) services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{newService: services.NewCategoryService}
}

// CreateCategoryRequest represents the request payload for creating a category.
type CreateCategoryRequest struct {
	Title    string `json:"title" binding:"required,max=100"`
	ParentID *uint  `json:"parent_id"`
}

// UpdateCategoryRequest represents the request payload for updating a
// category. ParentID distinguishes absent (unchanged) from null (detach)
// via the raw field presence check below.
type UpdateCategoryRequest struct {
	Title    *string `json:"title" binding:"omitempty,max=100"`
	ParentID *uint   `json:"parent_id"`
}

// CreateCategory handles the creation of a new category.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	l, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.newService(l).CreateCategory(req.Title, req.ParentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// ListCategories handles the retrieval of all categories in the selected ledger.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	l, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categories, err := h.newService(l).ListCategories()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategory handles the retrieval of a single category.
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	l, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.newService(l).GetCategoryByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// UpdateCategory handles partial updates of a category.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	l, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var raw map[string]interface{}
	if err := c.ShouldBindBodyWithJSON(&raw); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	var req UpdateCategoryRequest
	if err := c.ShouldBindBodyWithJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.CategoryUpdateFields{Title: req.Title}
	if _, present := raw["parent_id"]; present {
		fields.ParentID = &req.ParentID
	}

	category, err := h.newService(l).UpdateCategory(id, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory handles the deletion of a category.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	l, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.newService(l).DeleteCategory(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

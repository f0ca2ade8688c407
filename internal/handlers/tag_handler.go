package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tally/internal/errors"
	"tally/internal/ledger"
	"tally/internal/services"
)

// TagHandler handles tag-related requests.
type TagHandler struct {
	newService func(l *ledger.Ledger) services.TagServicer
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler() *TagHandler {
	return &TagHandler{newService: services.NewTagService}
}

// TagRequest represents the request payload for creating or renaming a tag.
type TagRequest struct {
	Title string `json:"title" binding:"required,max=100"`
}

// CreateTag handles the creation of a new tag.
func (h *TagHandler) CreateTag(c *gin.Context) {
	l, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tag, err := h.newService(l).CreateTag(req.Title)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tag": tag})
}

// ListTags handles the retrieval of all tags in the selected ledger.
func (h *TagHandler) ListTags(c *gin.Context) {
	l, err := getLedger(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tags, err := h.newService(l).ListTags()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// GetTag handles the retrieval of a single tag.
func (h *TagHandler) GetTag(c *gin.Context) {
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

	tag, err := h.newService(l).GetTagByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// UpdateTag handles renaming a tag.
func (h *TagHandler) UpdateTag(c *gin.Context) {
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

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tag, err := h.newService(l).UpdateTag(id, req.Title)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// DeleteTag handles the deletion of a tag, untagging its transactions.
func (h *TagHandler) DeleteTag(c *gin.Context) {
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

	if err := h.newService(l).DeleteTag(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted"})
}

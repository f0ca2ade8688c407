package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "tally/internal/errors"
	"tally/internal/ledger"
	"tally/internal/models"
)

type categoryService struct {
	ledger *ledger.Ledger
}

// NewCategoryService creates a category service bound to one ledger.
func NewCategoryService(l *ledger.Ledger) CategoryServicer {
	return &categoryService{ledger: l}
}

// CreateCategory creates a category, optionally nested under a parent.
func (s *categoryService) CreateCategory(title string, parentID *uint) (*models.Category, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Category title cannot be empty")
	}
	if err := s.checkTitleAvailable(title, 0); err != nil {
		return nil, err
	}
	if parentID != nil {
		if _, err := s.GetCategoryByID(*parentID); err != nil {
			return nil, err
		}
	}

	category := &models.Category{
		Title:    title,
		ParentID: parentID,
	}
	err := s.ledger.Write(func(tx *gorm.DB) error {
		return tx.Create(category).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// ListCategories returns all categories ordered by title.
func (s *categoryService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.ledger.DB().Order("title ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a single category by its ID.
func (s *categoryService) GetCategoryByID(id uint) (*models.Category, error) {
	var category models.Category
	if err := s.ledger.DB().First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory applies a partial update. A patch that changes nothing is
// rejected.
func (s *categoryService) UpdateCategory(id uint, fields CategoryUpdateFields) (*models.Category, error) {
	category, err := s.GetCategoryByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if fields.Title != nil {
		title := strings.TrimSpace(*fields.Title)
		if title == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Category title cannot be empty")
		}
		if title != category.Title {
			if err := s.checkTitleAvailable(title, id); err != nil {
				return nil, err
			}
			updates["title"] = title
		}
	}
	if fields.ParentID != nil {
		parentID := *fields.ParentID
		if !uintPtrEqual(parentID, category.ParentID) {
			if parentID != nil {
				if *parentID == id {
					return nil, apperrors.ErrSelfParentCategory
				}
				if _, err := s.GetCategoryByID(*parentID); err != nil {
					return nil, err
				}
			}
			updates["parent_id"] = parentID
		}
	}

	if len(updates) == 0 {
		return nil, apperrors.ErrNothingToChange
	}

	err = s.ledger.Write(func(tx *gorm.DB) error {
		return tx.Model(category).Updates(updates).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetCategoryByID(id)
}

// DeleteCategory removes a category. Deletion is refused while transactions
// reference it or child categories point at it.
func (s *categoryService) DeleteCategory(id uint) error {
	if _, err := s.GetCategoryByID(id); err != nil {
		return err
	}

	var childCount int64
	if err := s.ledger.DB().Model(&models.Category{}).Where("parent_id = ?", id).Count(&childCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if childCount > 0 {
		return apperrors.ErrCategoryHasChildren
	}

	var txCount int64
	if err := s.ledger.DB().Model(&models.Transaction{}).Where("category_id = ?", id).Count(&txCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if txCount > 0 {
		return apperrors.ErrCategoryInUse
	}

	err := s.ledger.Write(func(tx *gorm.DB) error {
		return tx.Delete(&models.Category{}, id).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *categoryService) checkTitleAvailable(title string, excludeID uint) error {
	var count int64
	q := s.ledger.DB().Model(&models.Category{}).Where("title = ?", title)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.WithMessage(apperrors.ErrDuplicateTitle, "A category with this title already exists")
	}
	return nil
}

func uintPtrEqual(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

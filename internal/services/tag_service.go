package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "tally/internal/errors"
	"tally/internal/ledger"
	"tally/internal/models"
)

type tagService struct {
	ledger *ledger.Ledger
}

// NewTagService creates a tag service bound to one ledger.
func NewTagService(l *ledger.Ledger) TagServicer {
	return &tagService{ledger: l}
}

func (s *tagService) CreateTag(title string) (*models.Tag, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Tag title cannot be empty")
	}
	if err := s.checkTitleAvailable(title, 0); err != nil {
		return nil, err
	}

	tag := &models.Tag{Title: title}
	err := s.ledger.Write(func(tx *gorm.DB) error {
		return tx.Create(tag).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tag, nil
}

func (s *tagService) ListTags() ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.ledger.DB().Order("title ASC").Find(&tags).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tags, nil
}

func (s *tagService) GetTagByID(id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.ledger.DB().First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTagNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tag, nil
}

func (s *tagService) UpdateTag(id uint, title string) (*models.Tag, error) {
	tag, err := s.GetTagByID(id)
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Tag title cannot be empty")
	}
	if title == tag.Title {
		return nil, apperrors.ErrNothingToChange
	}
	if err := s.checkTitleAvailable(title, id); err != nil {
		return nil, err
	}

	err = s.ledger.Write(func(tx *gorm.DB) error {
		return tx.Model(tag).Update("title", title).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetTagByID(id)
}

// DeleteTag removes a tag. Transactions carrying the tag survive untagged;
// balances never move.
func (s *tagService) DeleteTag(id uint) error {
	if _, err := s.GetTagByID(id); err != nil {
		return err
	}

	err := s.ledger.Write(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).Where("tag_id = ?", id).Update("tag_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tag{}, id).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *tagService) checkTitleAvailable(title string, excludeID uint) error {
	var count int64
	q := s.ledger.DB().Model(&models.Tag{}).Where("title = ?", title)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.WithMessage(apperrors.ErrDuplicateTitle, "A tag with this title already exists")
	}
	return nil
}

package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category. Names are unique per household;
// the same name in two different households is fine.
func (s *categoryService) CreateCategory(householdID, name string, categoryType models.CategoryType, description, icon, color string) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("household_id = ? AND name = ?", householdID, name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	category := &models.Category{
		HouseholdID: householdID,
		Name:        name,
		Type:        categoryType,
		Description: description,
		Icon:        icon,
		Color:       color,
	}

	if err := s.db.Create(category).Error; err != nil {
		// The pre-check races with concurrent creates; the unique index on
		// (household_id, name) is the real arbiter.
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateCategory
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetHouseholdCategories retrieves a paginated list of categories in a household.
func (s *categoryService) GetHouseholdCategories(householdID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{}).Where("household_id = ?", householdID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves a category within a household.
func (s *categoryService) GetCategoryByID(householdID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND household_id = ?", categoryID, householdID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates an existing category.
func (s *categoryService) UpdateCategory(householdID, categoryID string, name, description, icon, color string) (*models.Category, error) {
	category, err := s.GetCategoryByID(householdID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" && name != category.Name {
		var count int64
		if err := s.db.Model(&models.Category{}).
			Where("household_id = ? AND name = ? AND id <> ?", householdID, name, categoryID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil, apperrors.ErrDuplicateCategory
		}
		updates["name"] = name
	}
	if description != "" {
		updates["description"] = description
	}
	if icon != "" {
		updates["icon"] = icon
	}
	if color != "" {
		updates["color"] = color
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return nil, apperrors.ErrDuplicateCategory
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return category, nil
}

// DeleteCategory deletes a category. Existing transactions keep their
// category_id reference to the soft-deleted category for historical records.
func (s *categoryService) DeleteCategory(householdID, categoryID string) error {
	category, err := s.GetCategoryByID(householdID, categoryID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// FindOrCreateTransferCategory returns the household's canonical "Transfer"
// category, creating it on first use. The create is idempotent under
// concurrency: a unique-index violation means another request won the race,
// so the existing row is re-fetched instead of surfacing an error.
func (s *categoryService) FindOrCreateTransferCategory(householdID string) (*models.Category, error) {
	var category models.Category
	err := s.db.Where("household_id = ? AND name = ?", householdID, models.TransferCategoryName).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	category = models.Category{
		HouseholdID: householdID,
		Name:        models.TransferCategoryName,
		Type:        models.CategoryTypeExpense,
	}
	if err := s.db.Create(&category).Error; err != nil {
		if isUniqueViolation(err) {
			var existing models.Category
			if err := s.db.Where("household_id = ? AND name = ?", householdID, models.TransferCategoryName).First(&existing).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			return &existing, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

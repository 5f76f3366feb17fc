package sqlite

import (
	"fmt"
	"time"

	"abac-catalog-server/internal/core/domain"
	"abac-catalog-server/internal/core/ports/driven"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserAttributeValueDB represents a row in the user_attribute_values table
type UserAttributeValueDB struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false;column:user_id"`
	AttrID    uint `gorm:"primaryKey;autoIncrement:false;column:attr_id"`
	Value     string
	UpdatedAt time.Time
}

func (UserAttributeValueDB) TableName() string { return "user_attribute_values" }

// ResourceAttributeValueDB represents a row in the resource_attribute_values table
type ResourceAttributeValueDB struct {
	ResourceID uint `gorm:"primaryKey;autoIncrement:false;column:resource_id"`
	AttrID     uint `gorm:"primaryKey;autoIncrement:false;column:attr_id"`
	Value      string
	UpdatedAt  time.Time
}

func (ResourceAttributeValueDB) TableName() string { return "resource_attribute_values" }

// AttributeValueRepositoryImpl implements driven.AttributeValueRepository
// for SQLite.
type AttributeValueRepositoryImpl struct {
	db *gorm.DB
}

// NewAttributeValueRepository creates a new AttributeValueRepositoryImpl.
func NewAttributeValueRepository(db *gorm.DB) driven.AttributeValueRepository {
	// Auto-migrate the tables
	err := db.AutoMigrate(&UserAttributeValueDB{}, &ResourceAttributeValueDB{})
	if err != nil {
		panic(fmt.Sprintf("failed to migrate attribute value tables: %v", err))
	}
	return &AttributeValueRepositoryImpl{db: db}
}

// SetValue upserts the value for (subjectID, attrID) with a single
// INSERT ... ON CONFLICT DO UPDATE keyed on the composite primary key. Two
// concurrent writers to the same key cannot produce a second row or a
// constraint violation.
func (r *AttributeValueRepositoryImpl) SetValue(ns domain.AttributeNamespace, subjectID, attrID uint, value string) error {
	switch ns {
	case domain.NamespaceUser:
		rec := UserAttributeValueDB{UserID: subjectID, AttrID: attrID, Value: value, UpdatedAt: time.Now()}
		return r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "attr_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rec).Error
	case domain.NamespaceResource:
		rec := ResourceAttributeValueDB{ResourceID: subjectID, AttrID: attrID, Value: value, UpdatedAt: time.Now()}
		return r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "resource_id"}, {Name: "attr_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rec).Error
	default:
		return fmt.Errorf("unknown attribute namespace %q: %w", ns, domain.ErrInvalidInput)
	}
}

func (r *AttributeValueRepositoryImpl) GetValue(ns domain.AttributeNamespace, subjectID, attrID uint) (string, error) {
	switch ns {
	case domain.NamespaceUser:
		var rec UserAttributeValueDB
		result := r.db.Where("user_id = ? AND attr_id = ?", subjectID, attrID).First(&rec)
		if result.Error == gorm.ErrRecordNotFound {
			return "", domain.ErrNotFound
		}
		if result.Error != nil {
			return "", result.Error
		}
		return rec.Value, nil
	case domain.NamespaceResource:
		var rec ResourceAttributeValueDB
		result := r.db.Where("resource_id = ? AND attr_id = ?", subjectID, attrID).First(&rec)
		if result.Error == gorm.ErrRecordNotFound {
			return "", domain.ErrNotFound
		}
		if result.Error != nil {
			return "", result.Error
		}
		return rec.Value, nil
	default:
		return "", fmt.Errorf("unknown attribute namespace %q: %w", ns, domain.ErrInvalidInput)
	}
}

// GetValues returns all of subject's values keyed by attribute name, joining
// the value table with its namespace's attribute catalog.
func (r *AttributeValueRepositoryImpl) GetValues(ns domain.AttributeNamespace, subjectID uint) (map[string]string, error) {
	var rows []struct {
		Name  string
		Value string
	}
	switch ns {
	case domain.NamespaceUser:
		err := r.db.Table("user_attribute_values").
			Select("user_attributes.name AS name, user_attribute_values.value AS value").
			Joins("JOIN user_attributes ON user_attributes.id = user_attribute_values.attr_id").
			Where("user_attribute_values.user_id = ?", subjectID).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
	case domain.NamespaceResource:
		err := r.db.Table("resource_attribute_values").
			Select("resource_attributes.name AS name, resource_attribute_values.value AS value").
			Joins("JOIN resource_attributes ON resource_attributes.id = resource_attribute_values.attr_id").
			Where("resource_attribute_values.resource_id = ?", subjectID).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown attribute namespace %q: %w", ns, domain.ErrInvalidInput)
	}

	values := make(map[string]string)
	for _, row := range rows {
		values[row.Name] = row.Value
	}
	return values, nil
}

func (r *AttributeValueRepositoryImpl) CountValues(ns domain.AttributeNamespace, subjectID, attrID uint) (int64, error) {
	var count int64
	switch ns {
	case domain.NamespaceUser:
		err := r.db.Model(&UserAttributeValueDB{}).
			Where("user_id = ? AND attr_id = ?", subjectID, attrID).Count(&count).Error
		return count, err
	case domain.NamespaceResource:
		err := r.db.Model(&ResourceAttributeValueDB{}).
			Where("resource_id = ? AND attr_id = ?", subjectID, attrID).Count(&count).Error
		return count, err
	default:
		return 0, fmt.Errorf("unknown attribute namespace %q: %w", ns, domain.ErrInvalidInput)
	}
}

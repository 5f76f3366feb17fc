package sqlite

import (
	"fmt"
	"time"

	"abac-catalog-server/internal/core/domain"
	"abac-catalog-server/internal/core/ports/driven"

	"gorm.io/gorm"
)

// UserAttributeDB represents a row in the user_attributes catalog
type UserAttributeDB struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;size:64"`
	CreatedAt time.Time
}

func (UserAttributeDB) TableName() string { return "user_attributes" }

// ResourceAttributeDB represents a row in the resource_attributes catalog
type ResourceAttributeDB struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;size:64"`
	CreatedAt time.Time
}

func (ResourceAttributeDB) TableName() string { return "resource_attributes" }

// AttributeRegistryImpl implements driven.AttributeRegistry for SQLite.
type AttributeRegistryImpl struct {
	db *gorm.DB
}

// NewAttributeRegistry creates a new AttributeRegistryImpl.
func NewAttributeRegistry(db *gorm.DB) driven.AttributeRegistry {
	// Auto-migrate the catalogs
	err := db.AutoMigrate(&UserAttributeDB{}, &ResourceAttributeDB{})
	if err != nil {
		panic(fmt.Sprintf("failed to migrate attribute catalogs: %v", err))
	}
	return &AttributeRegistryImpl{db: db}
}

// Create allocates a fresh ID for name in ns. The duplicate check and the
// insert run inside one transaction, so two concurrent creators of the same
// name cannot both succeed; the unique index on name backstops the check.
func (r *AttributeRegistryImpl) Create(ns domain.AttributeNamespace, name string) (uint, error) {
	var id uint
	err := r.db.Transaction(func(tx *gorm.DB) error {
		switch ns {
		case domain.NamespaceUser:
			var count int64
			if err := tx.Model(&UserAttributeDB{}).Where("name = ?", name).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return domain.ErrAlreadyExists
			}
			rec := UserAttributeDB{Name: name}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			id = rec.ID
		case domain.NamespaceResource:
			var count int64
			if err := tx.Model(&ResourceAttributeDB{}).Where("name = ?", name).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return domain.ErrAlreadyExists
			}
			rec := ResourceAttributeDB{Name: name}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			id = rec.ID
		default:
			return fmt.Errorf("unknown attribute namespace %q: %w", ns, domain.ErrInvalidInput)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *AttributeRegistryImpl) Resolve(ns domain.AttributeNamespace, name string) (uint, error) {
	attr, err := r.Get(ns, name)
	if err != nil {
		return 0, err
	}
	return attr.ID, nil
}

func (r *AttributeRegistryImpl) Get(ns domain.AttributeNamespace, name string) (*domain.Attribute, error) {
	switch ns {
	case domain.NamespaceUser:
		var rec UserAttributeDB
		result := r.db.Where("name = ?", name).First(&rec)
		if result.Error == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		if result.Error != nil {
			return nil, result.Error
		}
		return &domain.Attribute{ID: rec.ID, Name: rec.Name, Namespace: ns, CreatedAt: rec.CreatedAt}, nil
	case domain.NamespaceResource:
		var rec ResourceAttributeDB
		result := r.db.Where("name = ?", name).First(&rec)
		if result.Error == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		if result.Error != nil {
			return nil, result.Error
		}
		return &domain.Attribute{ID: rec.ID, Name: rec.Name, Namespace: ns, CreatedAt: rec.CreatedAt}, nil
	default:
		return nil, fmt.Errorf("unknown attribute namespace %q: %w", ns, domain.ErrInvalidInput)
	}
}

func (r *AttributeRegistryImpl) List(ns domain.AttributeNamespace) ([]domain.Attribute, error) {
	var attrs []domain.Attribute
	switch ns {
	case domain.NamespaceUser:
		var recs []UserAttributeDB
		if err := r.db.Order("id").Find(&recs).Error; err != nil {
			return nil, err
		}
		for _, rec := range recs {
			attrs = append(attrs, domain.Attribute{ID: rec.ID, Name: rec.Name, Namespace: ns, CreatedAt: rec.CreatedAt})
		}
	case domain.NamespaceResource:
		var recs []ResourceAttributeDB
		if err := r.db.Order("id").Find(&recs).Error; err != nil {
			return nil, err
		}
		for _, rec := range recs {
			attrs = append(attrs, domain.Attribute{ID: rec.ID, Name: rec.Name, Namespace: ns, CreatedAt: rec.CreatedAt})
		}
	default:
		return nil, fmt.Errorf("unknown attribute namespace %q: %w", ns, domain.ErrInvalidInput)
	}
	return attrs, nil
}

package sqlite

import (
	"fmt"
	"time"

	"abac-catalog-server/internal/core/domain"
	"abac-catalog-server/internal/core/ports/driven"

	"gorm.io/gorm"
)

// RoleDB represents a row in the roles directory
type RoleDB struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;size:64"`
	CreatedAt time.Time
}

func (RoleDB) TableName() string { return "roles" }

// ResourceDB represents a row in the resources directory
type ResourceDB struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;size:64"`
	CreatedAt time.Time
}

func (ResourceDB) TableName() string { return "resources" }

// SubjectDirectoryImpl implements driven.SubjectDirectory for SQLite. It
// plays the part of the principal and resource catalogs grants resolve
// grantee names against.
type SubjectDirectoryImpl struct {
	db *gorm.DB
}

// NewSubjectDirectory creates a new SubjectDirectoryImpl.
func NewSubjectDirectory(db *gorm.DB) driven.SubjectDirectory {
	// Auto-migrate the directories
	err := db.AutoMigrate(&RoleDB{}, &ResourceDB{})
	if err != nil {
		panic(fmt.Sprintf("failed to migrate subject directories: %v", err))
	}
	return &SubjectDirectoryImpl{db: db}
}

func (d *SubjectDirectoryImpl) CreateRole(name string) (uint, error) {
	var id uint
	err := d.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&RoleDB{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrAlreadyExists
		}
		rec := RoleDB{Name: name}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		id = rec.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (d *SubjectDirectoryImpl) ResolveRole(name string) (uint, error) {
	var rec RoleDB
	result := d.db.Where("name = ?", name).First(&rec)
	if result.Error == gorm.ErrRecordNotFound {
		return 0, domain.ErrNotFound
	}
	if result.Error != nil {
		return 0, result.Error
	}
	return rec.ID, nil
}

func (d *SubjectDirectoryImpl) CreateResource(name string) (uint, error) {
	var id uint
	err := d.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ResourceDB{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrAlreadyExists
		}
		rec := ResourceDB{Name: name}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		id = rec.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (d *SubjectDirectoryImpl) ResolveResource(name string) (uint, error) {
	var rec ResourceDB
	result := d.db.Where("name = ?", name).First(&rec)
	if result.Error == gorm.ErrRecordNotFound {
		return 0, domain.ErrNotFound
	}
	if result.Error != nil {
		return 0, result.Error
	}
	return rec.ID, nil
}

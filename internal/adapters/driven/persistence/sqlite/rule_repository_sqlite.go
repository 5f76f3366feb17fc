package sqlite

import (
	"fmt"

	"abac-catalog-server/internal/core/domain"
	"abac-catalog-server/internal/core/ports/driven"

	"gorm.io/gorm"
)

// RuleClauseDB represents a row in the rule_clauses table. A rule is the
// set of all rows sharing rule_name.
// is_user_attr is part of the key: attribute IDs are allocated per
// namespace, so a user attribute and a resource attribute may carry the same
// numeric ID.
type RuleClauseDB struct {
	RuleName   string `gorm:"primaryKey;size:64;column:rule_name"`
	AttrID     uint   `gorm:"primaryKey;autoIncrement:false;column:attr_id"`
	IsUserAttr bool   `gorm:"primaryKey"`
	Value      string
}

func (RuleClauseDB) TableName() string { return "rule_clauses" }

// RuleRepositoryImpl implements driven.RuleRepository for SQLite.
type RuleRepositoryImpl struct {
	db *gorm.DB
}

// NewRuleRepository creates a new RuleRepositoryImpl.
func NewRuleRepository(db *gorm.DB) driven.RuleRepository {
	// Auto-migrate the table
	err := db.AutoMigrate(&RuleClauseDB{})
	if err != nil {
		panic(fmt.Sprintf("failed to migrate rule_clauses table: %v", err))
	}
	return &RuleRepositoryImpl{db: db}
}

// CreateRule inserts all clause rows of the rule inside one transaction.
// The duplicate-name check shares that transaction, so a concurrent creator
// of the same name observes either no rows or the complete rule, never a
// partial one.
func (r *RuleRepositoryImpl) CreateRule(name string, clauses []domain.RuleClause) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&RuleClauseDB{}).Where("rule_name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrAlreadyExists
		}
		for _, c := range clauses {
			rec := RuleClauseDB{
				RuleName:   name,
				AttrID:     c.AttributeID,
				IsUserAttr: c.IsUserAttr,
				Value:      c.Value,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *RuleRepositoryImpl) GetRule(name string) (*domain.Rule, error) {
	var recs []RuleClauseDB
	if err := r.db.Where("rule_name = ?", name).Order("attr_id").Find(&recs).Error; err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, domain.ErrNotFound
	}
	return toDomainRule(name, recs), nil
}

func (r *RuleRepositoryImpl) ListRules() ([]*domain.Rule, error) {
	var recs []RuleClauseDB
	if err := r.db.Order("rule_name, attr_id").Find(&recs).Error; err != nil {
		return nil, err
	}

	var rules []*domain.Rule
	byName := make(map[string]*domain.Rule)
	for _, rec := range recs {
		rule, ok := byName[rec.RuleName]
		if !ok {
			rule = &domain.Rule{Name: rec.RuleName}
			byName[rec.RuleName] = rule
			rules = append(rules, rule)
		}
		rule.Clauses = append(rule.Clauses, domain.RuleClause{
			RuleName:    rec.RuleName,
			AttributeID: rec.AttrID,
			IsUserAttr:  rec.IsUserAttr,
			Value:       rec.Value,
		})
	}
	return rules, nil
}

func toDomainRule(name string, recs []RuleClauseDB) *domain.Rule {
	clauses := make([]domain.RuleClause, len(recs))
	for i, rec := range recs {
		clauses[i] = domain.RuleClause{
			RuleName:    rec.RuleName,
			AttributeID: rec.AttrID,
			IsUserAttr:  rec.IsUserAttr,
			Value:       rec.Value,
		}
	}
	return &domain.Rule{Name: name, Clauses: clauses}
}

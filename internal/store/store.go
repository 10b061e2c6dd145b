package store

import (
	"context"
	"strings"

	"github.com/flowline/contactql/internal/predicate"
	"github.com/flowline/contactql/internal/schema"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Store wraps a GORM database holding contacts, URNs, fields and values.
type Store struct {
	db *gorm.DB
}

// New creates a store over an existing GORM database.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to the database identified by dsn. DSNs starting with
// postgres:// or postgresql:// use the postgres driver; anything else is
// treated as an sqlite path (use ":memory:" for an in-memory database).
func Open(dsn string) (*Store, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// DB exposes the underlying GORM database.
func (s *Store) DB() *gorm.DB { return s.db }

// Migrate creates or updates the schema for all models.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&Org{}, &Contact{}, &ContactURN{}, &ContactField{}, &Value{}, &AdminBoundary{},
	)
}

// ActiveFields implements schema.FieldSource by key lookup over the org's
// active fields.
func (s *Store) ActiveFields(org *schema.Org, keys []string) ([]*schema.Field, error) {
	var rows []ContactField
	err := s.db.
		Where("org_id = ? AND is_active = ? AND key IN ?", org.ID, true, keys).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	fields := make([]*schema.Field, len(rows))
	for i := range rows {
		fields[i] = rows[i].Schema()
	}
	return fields, nil
}

// BoundaryIDs implements schema.BoundarySource by case-insensitive name
// match over the boundary table.
func (s *Store) BoundaryIDs(name string, exact bool) ([]int64, error) {
	query := s.db.Model(&AdminBoundary{})
	if exact {
		query = query.Where("LOWER(name) = ?", strings.ToLower(name))
	} else {
		query = query.Where("LOWER(name) LIKE ? "+likeEscapeClause, buildContainsPattern(name))
	}

	var ids []int64
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Org loads an organization by ID.
func (s *Store) Org(ctx context.Context, id int64) (*Org, error) {
	var org Org
	if err := s.db.WithContext(ctx).First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// SearchContacts returns the org's active contacts matching the compiled
// predicate, ordered by ID.
func (s *Store) SearchContacts(ctx context.Context, org *schema.Org, node predicate.Node) ([]*Contact, error) {
	condition, args, err := BuildCondition(node)
	if err != nil {
		return nil, err
	}

	var contacts []*Contact
	err = s.db.WithContext(ctx).
		Where("org_id = ? AND is_active = ?", org.ID, true).
		Where(condition, args...).
		Order("id").
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

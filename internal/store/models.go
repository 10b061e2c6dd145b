// Package store is the GORM-backed storage collaborator: it holds contacts,
// their URNs and field values, interprets compiled predicates into SQL, and
// implements the schema lookup interfaces the compiler consumes.
package store

import (
	"time"

	"github.com/flowline/contactql/internal/schema"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Org is an organization owning contacts and fields.
type Org struct {
	ID       int64     `gorm:"primaryKey"`
	UUID     uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Name     string
	Timezone string `gorm:"default:UTC"`
	DayFirst bool
	IsAnon   bool
}

func (Org) TableName() string { return "orgs" }

// BeforeCreate assigns a UUID when none was provided.
func (o *Org) BeforeCreate(tx *gorm.DB) error {
	if o.UUID == uuid.Nil {
		o.UUID = uuid.New()
	}
	return nil
}

// Schema converts the stored org into the settings object the compiler
// uses. Unknown timezone names fall back to UTC.
func (o *Org) Schema() *schema.Org {
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &schema.Org{
		ID:       o.ID,
		UUID:     o.UUID,
		Name:     o.Name,
		Timezone: loc,
		DayFirst: o.DayFirst,
		IsAnon:   o.IsAnon,
	}
}

// Contact is the entity being searched.
type Contact struct {
	ID        int64     `gorm:"primaryKey"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	OrgID     int64     `gorm:"index"`
	Name      string
	IsActive  bool `gorm:"default:true"`
	CreatedOn time.Time
}

func (Contact) TableName() string { return "contacts" }

// BeforeCreate assigns a UUID when none was provided.
func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	return nil
}

// ContactURN is a typed address of a contact, e.g. a phone number or a
// social media handle, scoped by scheme.
type ContactURN struct {
	ID        int64 `gorm:"primaryKey"`
	ContactID int64 `gorm:"index"`
	OrgID     int64 `gorm:"index"`
	Scheme    string
	Path      string
	Priority  int
}

func (ContactURN) TableName() string { return "contact_urns" }

// ContactField is an organization-defined custom field.
type ContactField struct {
	ID        int64     `gorm:"primaryKey"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	OrgID     int64     `gorm:"index"`
	Key       string    `gorm:"index"`
	Label     string
	ValueType string
	IsActive  bool `gorm:"default:true"`
}

func (ContactField) TableName() string { return "contact_fields" }

// BeforeCreate assigns a UUID when none was provided.
func (f *ContactField) BeforeCreate(tx *gorm.DB) error {
	if f.UUID == uuid.Nil {
		f.UUID = uuid.New()
	}
	return nil
}

// Schema converts the stored field into the compiler's descriptor.
func (f *ContactField) Schema() *schema.Field {
	return &schema.Field{
		ID:        f.ID,
		UUID:      f.UUID,
		OrgID:     f.OrgID,
		Key:       f.Key,
		Label:     f.Label,
		ValueType: schema.ValueType(f.ValueType),
	}
}

// Value is one contact's value for one field. Exactly one of the typed
// columns is set, according to the field's value type.
type Value struct {
	ID             int64 `gorm:"primaryKey"`
	ContactID      int64 `gorm:"index"`
	ContactFieldID int64 `gorm:"index"`
	OrgID          int64 `gorm:"index"`
	StringValue    *string
	DecimalValue   decimal.NullDecimal `gorm:"type:numeric(36,8)"`
	DatetimeValue  *time.Time
	LocationID     *int64
}

func (Value) TableName() string { return "contact_values" }

// AdminBoundary is a node in the administrative boundary hierarchy
// (state / district / ward).
type AdminBoundary struct {
	ID       int64 `gorm:"primaryKey"`
	Name     string
	Level    int
	ParentID *int64 `gorm:"index"`
}

func (AdminBoundary) TableName() string { return "admin_boundaries" }

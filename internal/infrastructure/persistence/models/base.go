package models

import (
	"strings"
	"time"

	"github.com/cms/backend/internal/domain/content"
	"github.com/cms/backend/internal/domain/ordering"
	"github.com/cms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel maps shared.BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// PositionedModel holds the columns every orderable table shares. The
// composite unique index is named per table (idx_<table>_scope_sort_order).
type PositionedModel struct {
	BaseModel
	Scope     string         `gorm:"type:varchar(100);not null;index:,unique,composite:scope_sort_order"`
	SortOrder int            `gorm:"not null;index:,unique,composite:scope_sort_order"`
	Status    content.Status `gorm:"type:varchar(20);not null;default:'enabled'"`
}

// ToPositioned converts the shared columns to the domain value.
func (m *PositionedModel) ToPositioned() content.Positioned {
	collection, key, _ := strings.Cut(m.Scope, ":")
	return content.Positioned{
		BaseEntity: shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Scope:      ordering.Scope{Collection: collection, Key: key},
		SortOrder:  m.SortOrder,
		Status:     m.Status,
	}
}

// FromPositioned populates the shared columns.
func (m *PositionedModel) FromPositioned(p content.Positioned) {
	m.BaseModel = BaseModel{ID: p.ID, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
	m.Scope = p.Scope.String()
	m.SortOrder = p.SortOrder
	m.Status = p.Status
}

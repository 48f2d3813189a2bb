// Package models holds the GORM rows of the orderable content tables.
//
// Each model embeds PositionedModel for its id, scope and sort_order
// columns, and maps to and from its domain entity with ToDomain and
// FromDomain. Both AutoMigrate and the SQL migrations declare the
// (scope, sort_order) unique index.
package models

package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cms/backend/internal/domain/content"
	"github.com/cms/backend/internal/domain/ordering"
	"github.com/cms/backend/internal/domain/shared"
	"github.com/cms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Model is the persistence side of an orderable entity T. M is the model
// struct and the constraint pins its pointer type.
type Model[T any, M any] interface {
	*M
	TableName() string
	ToDomain() *T
	FromDomain(*T)
}

// GormOrderedRepository stores one orderable entity type and implements the
// ordering.Store contract for its table.
type GormOrderedRepository[T any, M any, PM Model[T, M]] struct {
	db            *gorm.DB
	table         string
	collection    string
	searchColumns []string
	sortable      map[string]bool
}

// NewGormOrderedRepository creates a repository for the table of M.
// searchColumns are matched by Filter.Search.
func NewGormOrderedRepository[T any, M any, PM Model[T, M]](db *gorm.DB, searchColumns ...string) *GormOrderedRepository[T, M, PM] {
	table := PM(new(M)).TableName()
	return &GormOrderedRepository[T, M, PM]{
		db:            db,
		table:         table,
		collection:    table,
		searchColumns: searchColumns,
		sortable:      sortFields(searchColumns...),
	}
}

// Collection implements ordering.Store
func (r *GormOrderedRepository[T, M, PM]) Collection() string {
	return r.collection
}

// FindByID finds an entity by its ID
func (r *GormOrderedRepository[T, M, PM]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	model := PM(new(M))
	if err := r.db.WithContext(ctx).First(model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists one page of a scope, by sort order unless the filter names
// another whitelisted column. Supported filters: Filters["status"] and Search
// over the configured columns.
func (r *GormOrderedRepository[T, M, PM]) FindAll(ctx context.Context, scope ordering.Scope, filter shared.Filter) ([]T, int64, error) {
	filter = filter.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(PM(new(M))).
		Scopes(r.filtered(scope, filter)).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []M
	if err := r.db.WithContext(ctx).
		Scopes(r.filtered(scope, filter)).
		Order(ValidateSortField(filter.OrderBy, r.sortable, "sort_order")+" "+ValidateSortOrder(filter.OrderDir, "ASC")).
		Order("id ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	items := make([]T, len(rows))
	for i := range rows {
		items[i] = *PM(&rows[i]).ToDomain()
	}
	return items, total, nil
}

func (r *GormOrderedRepository[T, M, PM]) filtered(scope ordering.Scope, filter shared.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("scope = ?", scope.String())
		if status, ok := filter.Filters["status"]; ok && status != "" {
			db = db.Where("status = ?", status)
		}
		if search := strings.TrimSpace(filter.Search); search != "" && len(r.searchColumns) > 0 {
			conds := make([]string, len(r.searchColumns))
			args := make([]any, len(r.searchColumns))
			for i, col := range r.searchColumns {
				conds[i] = "LOWER(" + col + ") LIKE ?"
				args[i] = "%" + strings.ToLower(search) + "%"
			}
			db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
		}
		return db
	}
}

// NextSortOrder returns max(sort_order) + 1 for the scope, or 1 when empty.
// A scope whose tail already sits at ordering.MaxSortOrder is full.
func (r *GormOrderedRepository[T, M, PM]) NextSortOrder(ctx context.Context, scope ordering.Scope) (int, error) {
	var maxOrder *int
	if err := r.db.WithContext(ctx).
		Table(r.table).
		Where("scope = ?", scope.String()).
		Select("MAX(sort_order)").
		Scan(&maxOrder).Error; err != nil {
		return 0, err
	}
	if maxOrder == nil {
		return 1, nil
	}
	if *maxOrder >= ordering.MaxSortOrder {
		return 0, ordering.ErrScopeFull
	}
	return *maxOrder + 1, nil
}

// Create inserts a new entity. A duplicate (scope, sort_order) surfaces as
// shared.ErrAlreadyExists.
func (r *GormOrderedRepository[T, M, PM]) Create(ctx context.Context, entity *T) error {
	model := PM(new(M))
	model.FromDomain(entity)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// Save updates the descriptive columns of an existing entity. Scope and
// sort order are owned by Create and UpdateOrders and are never written here.
func (r *GormOrderedRepository[T, M, PM]) Save(ctx context.Context, entity *T) error {
	model := PM(new(M))
	model.FromDomain(entity)
	result := r.db.WithContext(ctx).
		Model(model).
		Select("*").
		Omit("id", "created_at", "scope", "sort_order").
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an entity. Siblings keep their sort orders.
func (r *GormOrderedRepository[T, M, PM]) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(PM(new(M)), "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListEntries implements ordering.Store
func (r *GormOrderedRepository[T, M, PM]) ListEntries(ctx context.Context, scope ordering.Scope) ([]ordering.Entry, error) {
	return r.entries(r.db.WithContext(ctx), scope)
}

func (r *GormOrderedRepository[T, M, PM]) entries(db *gorm.DB, scope ordering.Scope) ([]ordering.Entry, error) {
	entries := []ordering.Entry{}
	if err := db.Table(r.table).
		Select("id", "sort_order").
		Where("scope = ?", scope.String()).
		Order("sort_order ASC").Order("id ASC").
		Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// UpdateOrders implements ordering.Store. The scope rows are locked, the
// merged state is validated in memory, and only then are rows written: first
// to temporary negative values, then to their targets, so the unique
// (scope, sort_order) index holds after every statement.
func (r *GormOrderedRepository[T, M, PM]) UpdateOrders(ctx context.Context, scope ordering.Scope, updates []ordering.Update, expectedVersion string) ([]ordering.Entry, error) {
	if err := ordering.ValidateBatch(updates, 0); err != nil {
		return nil, err
	}

	var result []ordering.Entry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := r.entries(tx.Clauses(clause.Locking{Strength: "UPDATE"}), scope)
		if err != nil {
			return err
		}
		if expectedVersion != "" && ordering.Version(current) != expectedVersion {
			return ordering.ErrVersionMismatch
		}

		next, err := ordering.Apply(current, updates)
		if err != nil {
			return err
		}

		changed := ordering.Changed(current, updates)
		for i, u := range changed {
			if err := r.setSortOrder(tx, scope, u.ID, -(i + 1), nil); err != nil {
				return err
			}
		}
		now := time.Now()
		for _, u := range changed {
			if err := r.setSortOrder(tx, scope, u.ID, u.SortOrder, &now); err != nil {
				return err
			}
		}

		result = next
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}
	return result, nil
}

func (r *GormOrderedRepository[T, M, PM]) setSortOrder(tx *gorm.DB, scope ordering.Scope, id uuid.UUID, order int, touched *time.Time) error {
	values := map[string]any{"sort_order": order}
	if touched != nil {
		values["updated_at"] = *touched
	}
	result := tx.Table(r.table).
		Where("id = ? AND scope = ?", id, scope.String()).
		Updates(values)
	if result.Error != nil {
		return fmt.Errorf("set sort_order of %s: %w", id, result.Error)
	}
	if result.RowsAffected != 1 {
		return shared.NewDomainError(ordering.CodeEntryNotFound, fmt.Sprintf("entry %s does not belong to the scope", id))
	}
	return nil
}

// translateError maps driver errors onto domain errors and leaves the rest
// untouched.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewDomainError(shared.ErrAlreadyExists.Code, "A record with the same position or id already exists")
	default:
		return err
	}
}

// Typed repositories for the four orderable collections.
type (
	FriendLinkRepository     = GormOrderedRepository[content.FriendLink, models.FriendLinkModel, *models.FriendLinkModel]
	CorporateHonorRepository = GormOrderedRepository[content.CorporateHonor, models.CorporateHonorModel, *models.CorporateHonorModel]
	ProductPageRepository    = GormOrderedRepository[content.Page, models.ProductPageModel, *models.ProductPageModel]
	SolutionPageRepository   = GormOrderedRepository[content.Page, models.SolutionPageModel, *models.SolutionPageModel]
)

// NewFriendLinkRepository creates the friend link repository
func NewFriendLinkRepository(db *gorm.DB) *FriendLinkRepository {
	return NewGormOrderedRepository[content.FriendLink, models.FriendLinkModel](db, "name", "url")
}

// NewCorporateHonorRepository creates the corporate honor repository
func NewCorporateHonorRepository(db *gorm.DB) *CorporateHonorRepository {
	return NewGormOrderedRepository[content.CorporateHonor, models.CorporateHonorModel](db, "title", "issuer")
}

// NewProductPageRepository creates the product page repository
func NewProductPageRepository(db *gorm.DB) *ProductPageRepository {
	return NewGormOrderedRepository[content.Page, models.ProductPageModel](db, "title")
}

// NewSolutionPageRepository creates the solution page repository
func NewSolutionPageRepository(db *gorm.DB) *SolutionPageRepository {
	return NewGormOrderedRepository[content.Page, models.SolutionPageModel](db, "title")
}

// Compile-time checks
var (
	_ content.Repository[content.FriendLink]     = (*FriendLinkRepository)(nil)
	_ content.Repository[content.CorporateHonor] = (*CorporateHonorRepository)(nil)
	_ content.Repository[content.Page]           = (*ProductPageRepository)(nil)
	_ content.Repository[content.Page]           = (*SolutionPageRepository)(nil)
	_ ordering.Store                             = (*FriendLinkRepository)(nil)
)

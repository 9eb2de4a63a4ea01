// Package crud is the generic persistence layer shared by every entity: a
// gorm-backed repository driven by a small Schema, set-based one-to-many
// links, and a compare-and-swap update primitive.
package crud

import (
	"context"
	"fmt"
	"maps"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is implemented by every persisted entity. The primary key column
// must be "id" and the row must carry an integer "version" column.
type Record interface {
	PrimaryKey() string
}

// UpdateResult is the outcome of a conditional write.
type UpdateResult int

const (
	Updated UpdateResult = iota
	UpdateNotFound
	UpdateConflict
)

func (r UpdateResult) String() string {
	switch r {
	case Updated:
		return "updated"
	case UpdateNotFound:
		return "not found"
	case UpdateConflict:
		return "conflict"
	}
	return fmt.Sprintf("UpdateResult(%d)", int(r))
}

// Err converts the result to nil, ErrNotFound or ErrConflict.
func (r UpdateResult) Err() error {
	switch r {
	case UpdateNotFound:
		return ErrNotFound
	case UpdateConflict:
		return ErrConflict
	}
	return nil
}

// Preload eager-loads an association restricted to the given columns.
// Only the child ids are needed to render relation fields.
type Preload struct {
	Association string
	Columns     []string
}

// Repository runs the queries of one entity type R.
type Repository[R Record] struct {
	db       *gorm.DB
	schema   Schema
	preloads []Preload
}

func NewRepository[R Record](db *gorm.DB, schema Schema, preloads ...Preload) *Repository[R] {
	return &Repository[R]{db: db, schema: schema, preloads: preloads}
}

// WithTx returns a repository bound to tx.
func (r *Repository[R]) WithTx(tx *gorm.DB) *Repository[R] {
	return &Repository[R]{db: tx, schema: r.schema, preloads: r.preloads}
}

func (r *Repository[R]) Schema() Schema { return r.schema }

func (r *Repository[R]) conn(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Create inserts rec without touching its associations.
func (r *Repository[R]) Create(ctx context.Context, rec *R) error {
	if err := r.conn(ctx).Omit(clause.Associations).Create(rec).Error; err != nil {
		return fmt.Errorf("create %s: %w", r.schema.Name, translate(err))
	}
	return nil
}

// Find returns the rows matching q: filtered, sorted, then paged.
func (r *Repository[R]) Find(ctx context.Context, q Query) ([]R, error) {
	tx := r.conn(ctx).Model(new(R))
	for _, c := range q.Where {
		tx = tx.Where(c.sql(), c.Value)
	}
	for _, o := range q.Order {
		tx = tx.Order(o.sql())
	}
	if q.Skip != nil {
		tx = tx.Offset(*q.Skip)
	}
	if q.Take != nil {
		tx = tx.Limit(*q.Take)
	}
	for _, p := range r.preloads {
		cols := p.Columns
		tx = tx.Preload(p.Association, func(db *gorm.DB) *gorm.DB {
			return db.Select(cols).Order("id")
		})
	}
	out := make([]R, 0)
	if err := tx.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("find %s: %w", r.schema.Name, translate(err))
	}
	return out, nil
}

// Count returns the number of rows matching where. Paging does not apply.
func (r *Repository[R]) Count(ctx context.Context, where []Condition) (int64, error) {
	tx := r.conn(ctx).Model(new(R))
	for _, c := range where {
		tx = tx.Where(c.sql(), c.Value)
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", r.schema.Name, translate(err))
	}
	return n, nil
}

// Get loads a single row by primary key, without associations.
func (r *Repository[R]) Get(ctx context.Context, id string) (R, error) {
	var rec R
	if err := r.conn(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		return rec, fmt.Errorf("get %s %q: %w", r.schema.Name, id, translate(err))
	}
	return rec, nil
}

// Version returns the current version of the row, the token expected by
// UpdateIf.
func (r *Repository[R]) Version(ctx context.Context, id string) (int64, error) {
	var versions []int64
	if err := r.conn(ctx).Model(new(R)).Where("id = ?", id).Pluck("version", &versions).Error; err != nil {
		return 0, fmt.Errorf("version of %s %q: %w", r.schema.Name, id, translate(err))
	}
	if len(versions) == 0 {
		return 0, fmt.Errorf("version of %s %q: %w", r.schema.Name, id, ErrNotFound)
	}
	return versions[0], nil
}

func (r *Repository[R]) Exists(ctx context.Context, id string) (bool, error) {
	return exists[R](r.conn(ctx), id)
}

// Delete removes the row. It does not touch rows referencing it.
func (r *Repository[R]) Delete(ctx context.Context, id string) error {
	res := r.conn(ctx).Where("id = ?", id).Delete(new(R))
	if res.Error != nil {
		return fmt.Errorf("delete %s %q: %w", r.schema.Name, id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete %s %q: %w", r.schema.Name, id, ErrNotFound)
	}
	return nil
}

// UpdateIf applies changes to the row only while its version still equals
// version, and bumps the version. Column names in changes are trusted.
// An empty changes map still bumps the version.
func (r *Repository[R]) UpdateIf(ctx context.Context, id string, version int64, changes map[string]any) (UpdateResult, error) {
	set := maps.Clone(changes)
	if set == nil {
		set = map[string]any{}
	}
	set["version"] = gorm.Expr("version + 1")

	tx := r.conn(ctx)
	res := tx.Model(new(R)).Where("id = ? AND version = ?", id, version).Updates(set)
	if res.Error != nil {
		return UpdateConflict, fmt.Errorf("update %s %q: %w", r.schema.Name, id, translate(res.Error))
	}
	if res.RowsAffected > 0 {
		return Updated, nil
	}
	ok, err := exists[R](tx, id)
	if err != nil {
		return UpdateConflict, fmt.Errorf("update %s %q: %w", r.schema.Name, id, err)
	}
	if !ok {
		return UpdateNotFound, nil
	}
	return UpdateConflict, nil
}

func exists[R any](tx *gorm.DB, id string) (bool, error) {
	var n int64
	if err := tx.Model(new(R)).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

func countIDs[R any](tx *gorm.DB, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	if err := tx.Model(new(R)).Where("id IN ?", ids).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

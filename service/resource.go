// Package service implements the operations of every resource on top of the
// generic crud layer: create, list, count, get, update, delete and the
// one-to-many relation operations.
package service

import (
	"context"
	"errors"
	"fmt"

	"finreport/dto"
	"finreport/pkg/crud"

	"gorm.io/gorm"
)

// resource carries the operations shared by every entity. R is the record,
// D its response shape and W its where-input.
type resource[R crud.Record, D any, W dto.Filter] struct {
	db    *gorm.DB
	repo  *crud.Repository[R]
	toDTO func(R) D
}

func newResource[R crud.Record, D any, W dto.Filter](db *gorm.DB, schema crud.Schema, toDTO func(R) D, preloads ...crud.Preload) *resource[R, D, W] {
	return &resource[R, D, W]{
		db:    db,
		repo:  crud.NewRepository[R](db, schema, preloads...),
		toDTO: toDTO,
	}
}

func mapAll[R, D any](rows []R, toDTO func(R) D) []D {
	out := make([]D, len(rows))
	for i, r := range rows {
		out[i] = toDTO(r)
	}
	return out
}

func (s *resource[R, D, W]) query(args dto.FindManyArgs[W]) (crud.Query, error) {
	return s.repo.Schema().Query(args.Where.Conditions(), args.Skip, args.Take, args.SortBy)
}

// List returns the records matching the filter, sorted then paged. A skip
// past the end yields an empty list.
func (s *resource[R, D, W]) List(ctx context.Context, args dto.FindManyArgs[W]) ([]D, error) {
	q, err := s.query(args)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return mapAll(rows, s.toDTO), nil
}

// Meta counts the records matching where. Paging does not apply.
func (s *resource[R, D, W]) Meta(ctx context.Context, where W) (dto.Metadata, error) {
	n, err := s.repo.Count(ctx, where.Conditions())
	if err != nil {
		return dto.Metadata{}, err
	}
	return dto.Metadata{Count: n}, nil
}

// Get runs the list pipeline restricted to id so the response carries the
// same eager-loaded relations as List.
func (s *resource[R, D, W]) Get(ctx context.Context, id string) (D, error) {
	var zero D
	take := 1
	rows, err := s.repo.Find(ctx, crud.Query{Where: []crud.Condition{crud.Equal("id", id)}, Take: &take})
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, fmt.Errorf("%s %q: %w", s.repo.Schema().Name, id, crud.ErrNotFound)
	}
	return s.toDTO(rows[0]), nil
}

// Delete removes the record. Rows referencing it keep their foreign key.
func (s *resource[R, D, W]) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// create inserts rec inside a transaction, running before ahead of the
// insert and after behind it when they are set, then re-reads the record
// through Get.
func (s *resource[R, D, W]) create(ctx context.Context, rec *R, before, after func(tx *gorm.DB) error) (D, error) {
	var zero D
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if before != nil {
			if err := before(tx); err != nil {
				return err
			}
		}
		if err := s.repo.WithTx(tx).Create(ctx, rec); err != nil {
			return err
		}
		if after != nil {
			return after(tx)
		}
		return nil
	})
	if err != nil {
		return zero, err
	}
	out, err := s.Get(ctx, (*rec).PrimaryKey())
	if errors.Is(err, crud.ErrNotFound) {
		return zero, fmt.Errorf("re-read created %s: %w", s.repo.Schema().Name, err)
	}
	return out, err
}

// update applies changes with a compare-and-swap on the row version. The
// resolve hook may add columns to changes or rewrite relations inside the
// transaction before the write. A lost race on an existing row yields
// crud.ErrConflict; it is not retried.
func (s *resource[R, D, W]) update(ctx context.Context, id string, changes map[string]any, resolve func(tx *gorm.DB, changes map[string]any) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		version, err := repo.Version(ctx, id)
		if err != nil {
			return err
		}
		if resolve != nil {
			if err := resolve(tx, changes); err != nil {
				return err
			}
		}
		res, err := repo.UpdateIf(ctx, id, version, changes)
		if err != nil {
			return err
		}
		if err := res.Err(); err != nil {
			return fmt.Errorf("update %s %q: %w", s.repo.Schema().Name, id, err)
		}
		return nil
	})
}

package service

import (
	"context"

	"finreport/dto"
	"finreport/pkg/crud"

	"gorm.io/gorm"
)

// Children exposes a one-to-many relation from parent P to child C, where D
// and W are the child's response shape and where-input.
type Children[P, C crud.Record, D any, W dto.Filter] struct {
	link  *crud.Link[P, C]
	repo  *crud.Repository[C]
	toDTO func(C) D
}

func newChildren[P, C crud.Record, D any, W dto.Filter](db *gorm.DB, name, foreignKey string, child *resource[C, D, W]) *Children[P, C, D, W] {
	return &Children[P, C, D, W]{
		link:  crud.NewLink[P, C](db, name, foreignKey),
		repo:  child.repo,
		toDTO: child.toDTO,
	}
}

// Find lists the children of parentID through the same filter, sort and
// paging pipeline as List. An unknown parent simply has no children.
func (c *Children[P, C, D, W]) Find(ctx context.Context, parentID string, args dto.FindManyArgs[W]) ([]D, error) {
	q, err := c.repo.Schema().Query(args.Where.Conditions(), args.Skip, args.Take, args.SortBy)
	if err != nil {
		return nil, err
	}
	rows, err := c.repo.Find(ctx, q.And(crud.Equal(c.link.ForeignKey(), parentID)))
	if err != nil {
		return nil, err
	}
	return mapAll(rows, c.toDTO), nil
}

// Connect attaches ids to parentID. Already attached ids are left alone.
func (c *Children[P, C, D, W]) Connect(ctx context.Context, parentID string, ids []string) error {
	return c.link.Connect(ctx, parentID, ids)
}

// Disconnect detaches ids from parentID. Ids not attached to it are ignored.
func (c *Children[P, C, D, W]) Disconnect(ctx context.Context, parentID string, ids []string) error {
	return c.link.Disconnect(ctx, parentID, ids)
}

// Replace makes ids the complete child set of parentID.
func (c *Children[P, C, D, W]) Replace(ctx context.Context, parentID string, ids []string) error {
	return c.link.Replace(ctx, parentID, ids)
}

// assign is Replace without existence checks, used when a report is created
// or updated with child id lists.
func (c *Children[P, C, D, W]) assign(ctx context.Context, tx *gorm.DB, parentID string, ids []string) error {
	return c.link.WithTx(tx).Assign(ctx, parentID, ids)
}

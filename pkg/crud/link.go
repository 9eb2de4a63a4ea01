package crud

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Link maintains a one-to-many relation from parent P to child C whose
// foreign key column lives on the child table. Every operation is a single
// set-based UPDATE on the child table; collections are never loaded.
type Link[P, C Record] struct {
	db         *gorm.DB
	name       string
	foreignKey string
}

func NewLink[P, C Record](db *gorm.DB, name, foreignKey string) *Link[P, C] {
	return &Link[P, C]{db: db, name: name, foreignKey: foreignKey}
}

func (l *Link[P, C]) WithTx(tx *gorm.DB) *Link[P, C] {
	return &Link[P, C]{db: tx, name: l.name, foreignKey: l.foreignKey}
}

// ForeignKey returns the child column referencing the parent.
func (l *Link[P, C]) ForeignKey() string { return l.foreignKey }

func (l *Link[P, C]) conn(ctx context.Context) *gorm.DB {
	return l.db.WithContext(ctx)
}

func (l *Link[P, C]) set(parentID any) map[string]any {
	return map[string]any{
		l.foreignKey: parentID,
		"version":    gorm.Expr("version + 1"),
	}
}

// requireParent fails with ErrNotFound unless the parent row exists.
func (l *Link[P, C]) requireParent(tx *gorm.DB, parentID string) error {
	ok, err := exists[P](tx, parentID)
	if err != nil {
		return fmt.Errorf("%s: %w", l.name, err)
	}
	if !ok {
		return fmt.Errorf("%s: parent %q: %w", l.name, parentID, ErrNotFound)
	}
	return nil
}

// requireChildren fails with ErrNotFound unless at least one id resolves.
func (l *Link[P, C]) requireChildren(tx *gorm.DB, ids []string) error {
	n, err := countIDs[C](tx, ids)
	if err != nil {
		return fmt.Errorf("%s: %w", l.name, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: no child resolved: %w", l.name, ErrNotFound)
	}
	return nil
}

// Connect attaches the children to the parent. Children already attached to
// the parent are left alone, unknown ids are skipped. It fails with
// ErrNotFound when the parent is missing or none of ids exists.
func (l *Link[P, C]) Connect(ctx context.Context, parentID string, ids []string) error {
	return l.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := l.requireParent(tx, parentID); err != nil {
			return err
		}
		if err := l.requireChildren(tx, ids); err != nil {
			return err
		}
		err := tx.Model(new(C)).
			Where("id IN ?", ids).
			Where("("+l.foreignKey+" IS NULL OR "+l.foreignKey+" <> ?)", parentID).
			Updates(l.set(parentID)).Error
		if err != nil {
			return fmt.Errorf("%s: connect: %w", l.name, translate(err))
		}
		return nil
	})
}

// Disconnect detaches the children from the parent. Ids that are unknown or
// not attached to this parent are ignored.
func (l *Link[P, C]) Disconnect(ctx context.Context, parentID string, ids []string) error {
	return l.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := l.requireParent(tx, parentID); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		err := tx.Model(new(C)).
			Where("id IN ?", ids).
			Where(l.foreignKey+" = ?", parentID).
			Updates(l.set(nil)).Error
		if err != nil {
			return fmt.Errorf("%s: disconnect: %w", l.name, translate(err))
		}
		return nil
	})
}

// Replace makes ids the parent's complete child set. It fails with
// ErrNotFound when the parent is missing or none of ids exists.
func (l *Link[P, C]) Replace(ctx context.Context, parentID string, ids []string) error {
	return l.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := l.requireParent(tx, parentID); err != nil {
			return err
		}
		if err := l.requireChildren(tx, ids); err != nil {
			return err
		}
		return l.WithTx(tx).Assign(ctx, parentID, ids)
	})
}

// Assign makes ids the parent's complete child set without any existence
// checks. An empty ids detaches every child. Unknown ids are skipped.
func (l *Link[P, C]) Assign(ctx context.Context, parentID string, ids []string) error {
	return l.conn(ctx).Transaction(func(tx *gorm.DB) error {
		detach := tx.Model(new(C)).Where(l.foreignKey+" = ?", parentID)
		if len(ids) > 0 {
			detach = detach.Where("id NOT IN ?", ids)
		}
		if err := detach.Updates(l.set(nil)).Error; err != nil {
			return fmt.Errorf("%s: detach: %w", l.name, translate(err))
		}
		if len(ids) == 0 {
			return nil
		}
		err := tx.Model(new(C)).
			Where("id IN ?", ids).
			Where("("+l.foreignKey+" IS NULL OR "+l.foreignKey+" <> ?)", parentID).
			Updates(l.set(parentID)).Error
		if err != nil {
			return fmt.Errorf("%s: attach: %w", l.name, translate(err))
		}
		return nil
	})
}

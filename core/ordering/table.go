package ordering

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderColumn is the rank column shared by every orderable table.
const OrderColumn = "order"

// Table issues the store side of an ordering plan.
type Table struct {
	// Name is the table name.
	Name string
	// Partition is the nullable grouping column ("" for flat tables).
	Partition string
}

// scope restricts a statement to one partition. A nil parent selects the
// top-level rows (partition column IS NULL).
func (t Table) scope(tx *gorm.DB, parent *int64) *gorm.DB {
	q := tx.Table(t.Name)
	if t.Partition == "" {
		return q
	}
	if parent == nil {
		return q.Where(clause.Eq{Column: clause.Column{Name: t.Partition}, Value: nil})
	}
	return q.Where(clause.Eq{Column: clause.Column{Name: t.Partition}, Value: *parent})
}

// Shift moves every row of the partition whose order falls in s.
func (t Table) Shift(tx *gorm.DB, parent *int64, s *Shift) error {
	if s == nil || s.Delta == 0 {
		return nil
	}
	col := clause.Column{Name: OrderColumn}
	q := t.scope(tx, parent).Where(clause.Gte{Column: col, Value: s.Lo})
	if s.Hi != 0 {
		q = q.Where(clause.Lte{Column: col, Value: s.Hi})
	}
	if err := q.UpdateColumn(OrderColumn, gorm.Expr("? + ?", col, s.Delta)).Error; err != nil {
		return fmt.Errorf("shift %s orders: %w", t.Name, err)
	}
	return nil
}

// Apply writes the changed orders with a single bulk statement. Rows absent
// from changes are never touched.
func (t Table) Apply(tx *gorm.DB, changes map[int64]int) error {
	if len(changes) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(changes))
	for id := range changes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var sb strings.Builder
	args := make([]any, 0, len(ids)*2)
	sb.WriteString("CASE id")
	for _, id := range ids {
		sb.WriteString(" WHEN ? THEN ?")
		args = append(args, id, changes[id])
	}
	sb.WriteString(" END")

	err := tx.Table(t.Name).
		Where("id IN ?", ids).
		UpdateColumn(OrderColumn, gorm.Expr(sb.String(), args...)).Error
	if err != nil {
		return fmt.Errorf("apply %s orders: %w", t.Name, err)
	}
	return nil
}

// Set writes the order of a single row.
func (t Table) Set(tx *gorm.DB, id int64, order int) error {
	err := tx.Table(t.Name).Where("id = ?", id).UpdateColumn(OrderColumn, order).Error
	if err != nil {
		return fmt.Errorf("set %s order: %w", t.Name, err)
	}
	return nil
}

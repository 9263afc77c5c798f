package database

import (
	"github.com/helixml/affinity/domain/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplyOptions narrows db to the rows selected by options, in their order.
func ApplyOptions(db *gorm.DB, options ...query.Option) *gorm.DB {
	q := query.Build(options...)

	for _, f := range q.Filters() {
		db = db.Where(clause.Eq{Column: clause.Column{Name: f.Column}, Value: f.Value})
	}
	for _, col := range q.Orders() {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: col}})
	}
	return db
}

package database

import (
	"gorm.io/gorm"

	"taskforge/internal/utils"
)

// Paginate applies a page request to a GORM query: offset/limit plus the
// sanitized ordering, with "id ASC" as the stable tiebreak.
func Paginate(req utils.PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Order(req.OrderClause()).
			Order("id ASC").
			Offset(req.Page * req.Size).
			Limit(req.Size)
	}
}

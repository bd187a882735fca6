package database

import (
	"gorm.io/gorm"

	"github.com/taskhub/taskhub-api/internal/utils"
)

// Paginate is a GORM scope applying the validated page window to a list
// query. Callers must have counted the unpaginated set first if they need a
// total.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

package service

import "gorm.io/gorm"

const (
	DefaultPageSize = 6
	MaxPageSize     = 100
)

// Paginate is a GORM scope applying page/limit query parameters.
func Paginate(page, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = DefaultPageSize
		}
		if limit > MaxPageSize {
			limit = MaxPageSize
		}
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}

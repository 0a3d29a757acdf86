package repositories

import (
	"gorm.io/gorm"
)

// paginate counts every row matched by scope, then loads one page of it.
// Pages below 1 or past the end yield an empty slice, never an error.
func paginate[T any](db *gorm.DB, scope func(*gorm.DB) *gorm.DB, order string, page, perPage int, preloads ...string) ([]T, int64, error) {
	var total int64
	if err := db.Model(new(T)).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := []T{}
	if page < 1 || perPage < 1 || int64(page-1)*int64(perPage) >= total {
		return items, total, nil
	}

	query := db.Model(new(T)).Scopes(scope)
	for _, p := range preloads {
		query = query.Preload(p)
	}
	err := query.Order(order).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&items).Error
	return items, total, err
}

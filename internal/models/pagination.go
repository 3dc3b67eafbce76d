package models

import "math"

const (
	// DefaultPage — страница по умолчанию.
	DefaultPage = 1
	// DefaultLimit — размер страницы по умолчанию.
	DefaultLimit = 10
	// MaxLimit — максимальный размер страницы.
	MaxLimit = 100
	// MaxOffset — наибольшее допустимое смещение выборки.
	MaxOffset = math.MaxInt32
)

// SubscriptionFilter задаёт параметры административной выборки подписок.
// Пустой Status означает отсутствие фильтра.
type SubscriptionFilter struct {
	Status string
	Page   int
	Limit  int
}

// Offset возвращает смещение для страницы: (page-1)*limit.
// Page и Limit должны быть проверены через ValidPage.
func (f SubscriptionFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// ValidPage сообщает, что смещение страницы не превышает MaxOffset.
// Limit должен быть положительным.
func (f SubscriptionFilter) ValidPage() bool {
	return f.Page >= 1 && f.Page-1 <= MaxOffset/f.Limit
}

// Pagination описывает страницу результата.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination считает количество страниц для total записей.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}
}

package models

import "time"

// Plan представляет тарифный план, на который можно подписаться.
// Features всегда хранится как список строк: декодирование из формата
// хранилища выполняется в слое репозитория.
type Plan struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Duration  int       `json:"duration"` // длительность в днях
	Features  []string  `json:"features"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePlanRequest — тело запроса на создание плана.
type CreatePlanRequest struct {
	Name     string   `json:"name" validate:"required,max=100"`
	Price    float64  `json:"price" validate:"gt=0"`
	Duration int      `json:"duration" validate:"required,gt=0"`
	Features []string `json:"features" validate:"required,min=1,dive,required"`
}

package domain

import "time"

// SavedItem описывает сохранённую пользователем ссылку на товар.
// Поле Embedding заполняется лениво и может отсутствовать до первой векторизации.
type SavedItem struct {
	ID          string
	UserID      string
	URL         string
	Title       string
	Brand       string
	Price       string
	Description string
	ImageURL    string
	Embedding   []float32
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewSavedItem(userID, url string) *SavedItem {
	return &SavedItem{
		UserID: userID,
		URL:    url,
	}
}

// HasEmbedding сообщает, пригоден ли элемент как кандидат для векторного ранжирования.
func (s *SavedItem) HasEmbedding() bool {
	return len(s.Embedding) > 0
}

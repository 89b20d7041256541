package domain

// StyleProfile — производный профиль стиля пользователя.
// Живёт в пределах одного запроса рекомендаций и никогда не персистится.
type StyleProfile struct {
	Summary   string
	Embedding []float32
}

func NewStyleProfile(summary string) *StyleProfile {
	return &StyleProfile{
		Summary: summary,
	}
}

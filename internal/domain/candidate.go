package domain

// Candidate — сырой кандидат от одного из источников.
// Форма неоднородная: разные источники заполняют разные поля,
// нормализацию выполняет Normalizer.
type Candidate struct {
	Title       string
	Brand       string
	Source      string
	Price       string
	URL         string
	Link        string
	ProductLink string
	Thumbnail   string
	Reason      string
	Score       *float64
}

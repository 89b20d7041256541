package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Внутренние ошибки с векторами
	ErrEmptyVector        = fmt.Errorf("empty embedding vector")
	ErrVectorSizeMismatch = fmt.Errorf("vector size mismatch")

	// 400 Bad Request
	ErrStatusBadRequest   = fmt.Errorf("bad request")
	ErrUserIDRequired     = fmt.Errorf("User ID is required")
	ErrEmbeddingTextEmpty = fmt.Errorf("at least one text field is required")
	ErrLinkIDRequired     = fmt.Errorf("linkId is required")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")

	// Переходные ошибки источников кандидатов: оркестратор перехватывает их
	// и выполняет не более одного fallback-перехода на следующую стратегию.
	ErrNoCandidates         = fmt.Errorf("no eligible candidates")
	ErrEmbeddingUnavailable = fmt.Errorf("embedding service unavailable")
	ErrMalformedGeneration  = fmt.Errorf("malformed generative output")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

package usecase

import "context"

type EmbeddingInfra interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type GenerativeInfra interface {
	// Generate возвращает сырой JSON-объект, сгенерированный моделью.
	// Валидация формы — обязанность вызывающего.
	Generate(ctx context.Context, systemPrompt, userPrompt string) ([]byte, error)
}

type DiscoveryInfra interface {
	Search(ctx context.Context, req *DiscoverySearchReq) (*DiscoverySearchRes, error)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

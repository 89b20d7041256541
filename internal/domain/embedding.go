package domain

import "time"

// Payload описывает дополнительную информацию вектора
type Payload map[string]any

// Embedding представляет вектор одного сохранённого товара для Qdrant
type Embedding struct {
	ID      string
	Vector  []float32
	Payload Payload
}

func NewEmbedding(id string, vector []float32, payload Payload) *Embedding {
	return &Embedding{
		ID:      id,
		Vector:  vector,
		Payload: payload,
	}
}

func NewPayload(linkID, userID, url string) Payload {
	return Payload{
		"link_id":    linkID,
		"user_id":    userID,
		"url":        url,
		"created_at": time.Now().UTC().UnixNano(),
	}
}

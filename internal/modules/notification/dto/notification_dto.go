package dto

import "github.com/google/uuid"

// MarkReadInput marks the listed notifications read; an empty list marks all.
type MarkReadInput struct {
	IDs []uuid.UUID `json:"ids"`
}

type UnreadResponse struct {
	Count int64 `json:"count"`
}

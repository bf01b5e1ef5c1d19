package adapters

import (
	"github.com/getmilo/milo/pkg/models/api"
	"github.com/getmilo/milo/pkg/models/domain"
)

func MapChatRequestApiToDomain(r api.ChatRequest) domain.ChatRequest {
	history := make([]domain.ChatMessage, 0, len(r.History))
	for _, t := range r.History {
		history = append(history, domain.ChatMessage{Role: domain.ChatRole(t.Role), Content: t.Content})
	}
	return domain.ChatRequest{Message: r.Message, History: history}
}

package assistant

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/auth"
	"github.com/senemedecine/api/internal/platform/llm"
)

const (
	// maxMessageRunes bounds a single user message.
	maxMessageRunes = 4000
	// maxHistory is the number of previous turns forwarded to the model.
	maxHistory = 20
)

const systemPrompt = `Tu es l'assistant médical de SeneMedecine, une plateforme de gestion hospitalière au Sénégal.
Réponds en français, de façon claire et concise.
Tu aides le personnel soignant et les patients à comprendre des informations médicales générales.
Tu ne poses pas de diagnostic définitif et tu ne prescris pas de traitement: recommande toujours de consulter un médecin.
En cas d'urgence, conseille d'appeler immédiatement le SAMU (1515).`

// Completer is the chat completion backend.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

type ChatRequest struct {
	Message string        `json:"message"`
	History []llm.Message `json:"history"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type Service struct {
	llm Completer
}

func NewService(c Completer) *Service {
	return &Service{llm: c}
}

// Chat forwards the conversation to the model behind a fixed system prompt.
// Client supplied system messages are dropped.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, apperr.Validation("Le message est requis")
	}
	if utf8.RuneCountInString(msg) > maxMessageRunes {
		return nil, apperr.Validation("Le message ne doit pas dépasser %d caractères", maxMessageRunes)
	}

	messages := []llm.Message{{Role: llm.RoleSystem, Content: systemPrompt + "\nL'utilisateur a le rôle " + string(p.Role) + "."}}
	messages = append(messages, trimHistory(req.History)...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: msg})

	reply, err := s.llm.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	return &ChatResponse{Reply: reply}, nil
}

func trimHistory(history []llm.Message) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, m)
	}
	if len(out) > maxHistory {
		out = out[len(out)-maxHistory:]
	}
	return out
}

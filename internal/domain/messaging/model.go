package messaging

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/platform/apperr"
)

// Box selects which side of the conversation a listing shows.
type Box string

const (
	BoxInbox Box = "inbox"
	BoxSent  Box = "sent"
)

func ParseBox(s string) (Box, error) {
	switch b := Box(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BoxInbox, nil
	case BoxInbox, BoxSent:
		return b, nil
	}
	return "", apperr.Validation("box doit valoir inbox ou sent")
}

type Message struct {
	ID             uuid.UUID  `json:"id"`
	ExpediteurID   uuid.UUID  `json:"expediteur_id"`
	DestinataireID uuid.UUID  `json:"destinataire_id"`
	ConsultationID *uuid.UUID `json:"consultation_id,omitempty"`
	Contenu        string     `json:"contenu"`
	Lu             bool       `json:"lu"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type Input struct {
	DestinataireID *uuid.UUID `json:"destinataire_id"`
	ConsultationID *uuid.UUID `json:"consultation_id"`
	Contenu        *string    `json:"contenu"`
}

// Filter lists one user's inbox or sent box.
type Filter struct {
	UserID uuid.UUID
	Box    Box
	Lu     *bool
}

package imaging

import (
	"time"

	"github.com/google/uuid"
)

// Association links a consultation to a study stored in Orthanc.
type Association struct {
	ID             uuid.UUID  `json:"id"`
	ConsultationID uuid.UUID  `json:"consultation_id"`
	OrthancStudyID string     `json:"orthanc_study_id"`
	Description    *string    `json:"description,omitempty"`
	CreatedBy      *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type AttachInput struct {
	OrthancStudyID string  `json:"orthanc_study_id"`
	Description    *string `json:"description"`
}

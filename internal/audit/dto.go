package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/lostfound-backend/pkg/db/models"
)

// EntryDTO is the staff-facing view of one recorded login.
type EntryDTO struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	IPAddress   *string         `json:"ip_address"`
	LoginSource string          `json:"login_source"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func FromModel(m models.LoginAuditEntry) EntryDTO {
	dto := EntryDTO{
		ID:          m.ID,
		UserID:      m.UserID,
		IPAddress:   m.IPAddress,
		LoginSource: m.LoginSource,
		CreatedAt:   m.CreatedAt,
	}
	if len(m.Metadata) > 0 {
		dto.Metadata = json.RawMessage(m.Metadata)
	}
	return dto
}

func FromModels(rows []models.LoginAuditEntry) []EntryDTO {
	out := make([]EntryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}

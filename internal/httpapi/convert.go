package httpapi

import (
	"time"

	"github.com/smartlock/gateway/internal/smartlock/store"
	"github.com/smartlock/gateway/internal/smartlock/types"
)

func attemptToAPI(rec store.AttemptRecord) types.AttemptLog {
	return types.AttemptLog{
		ID:           rec.ID,
		UserID:       rec.UserID,
		CardID:       rec.CardID,
		OccurredAt:   rec.OccurredAt.UTC().Format(time.RFC3339Nano),
		Location:     rec.Location,
		Status:       rec.Status,
		AttemptCount: rec.AttemptCount,
		Overtime:     rec.Overtime,
		Excessive:    rec.Excessive,
	}
}

package types

type AccessRequest struct {
	CardID   string `json:"card_id"`
	Location string `json:"location,omitempty"`
}

type AccessResponse struct {
	Granted    bool   `json:"granted"`
	Reason     string `json:"reason"`
	ServerTime string `json:"server_time"`
}

// AttemptLog is the API shape of one audit record.
type AttemptLog struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	CardID       string `json:"card_id"`
	OccurredAt   string `json:"occurred_at"`
	Location     string `json:"location,omitempty"`
	Status       string `json:"status"`
	AttemptCount int    `json:"attempt_count"`
	Overtime     bool   `json:"overtime"`
	Excessive    bool   `json:"excessive"`
}

// AccessStats summarizes the audit log over a time range.  Derived on
// demand, never stored.
type AccessStats struct {
	Total     int `json:"total"`
	Granted   int `json:"granted"`
	Denied    int `json:"denied"`
	Overtime  int `json:"overtime"`
	Excessive int `json:"excessive"`
}

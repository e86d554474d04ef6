package domain

import "time"

type NotificationChannel string

const (
	NotificationChannelEmail     NotificationChannel = "EMAIL"
	NotificationChannelMessaging NotificationChannel = "MESSAGING"
)

type NotificationOutcome string

const (
	NotificationOutcomeSent  NotificationOutcome = "SENT"
	NotificationOutcomeError NotificationOutcome = "ERROR"
)

// NotificationPhase identifies the moment in the charge lifecycle a
// notification belongs to.
type NotificationPhase string

const (
	NotificationPhase7D  NotificationPhase = "7D"
	NotificationPhase1D  NotificationPhase = "1D"
	NotificationPhaseDue NotificationPhase = "DUE"
)

// OverduePhase builds the phase label for a days-late bucket, e.g. OVERDUE_7.
func OverduePhase(bucket int) NotificationPhase {
	switch bucket {
	case 1:
		return "OVERDUE_1"
	case 7:
		return "OVERDUE_7"
	case 14:
		return "OVERDUE_14"
	case 21:
		return "OVERDUE_21"
	case 30:
		return "OVERDUE_30"
	}
	return "OVERDUE"
}

// NotificationLog is one append-only row per send attempt.
type NotificationLog struct {
	ID        int32               `json:"id"`
	ChargeID  int32               `json:"charge_id"`
	Phase     NotificationPhase   `json:"phase"`
	Channel   NotificationChannel `json:"channel"`
	Recipient string              `json:"recipient"`
	Outcome   NotificationOutcome `json:"outcome"`
	Detail    string              `json:"detail,omitempty"`
	SentAt    time.Time           `json:"sent_at"`
}

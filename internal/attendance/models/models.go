package models

import (
	"strings"
	"time"
)

// Record is one attendance submission. At most one exists per (UserID, Date)
// and at most one per OriginAddress across all history.
type Record struct {
	Name          string
	UserID        string
	Email         string
	Date          string
	Time          string
	Token         string
	OriginAddress string
}

// FlaggedPairing joins a rejected submission (T*) to the stored record (S*)
// that already held its origin address.
type FlaggedPairing struct {
	ID            int64
	TName         string
	TUserID       string
	TEmail        string
	TDate         string
	TTime         string
	TToken        string
	SName         string
	SUserID       string
	SEmail        string
	OriginAddress string
	FlaggedAt     time.Time
}

// NewFlaggedPairing pairs the attempted submission with the original holder of the origin.
func NewFlaggedPairing(attempted, original Record, at time.Time) FlaggedPairing {
	return FlaggedPairing{
		TName:         attempted.Name,
		TUserID:       attempted.UserID,
		TEmail:        attempted.Email,
		TDate:         attempted.Date,
		TTime:         attempted.Time,
		TToken:        attempted.Token,
		SName:         original.Name,
		SUserID:       original.UserID,
		SEmail:        original.Email,
		OriginAddress: attempted.OriginAddress,
		FlaggedAt:     at.UTC(),
	}
}

// Outcome is the result of a submission that reached the store.
type Outcome int

const (
	OutcomeAccepted Outcome = iota + 1
	OutcomeAlreadySubmittedToday
	OutcomeRejectedCollision
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeAlreadySubmittedToday:
		return "already_submitted_today"
	case OutcomeRejectedCollision:
		return "rejected_collision"
	default:
		return "unknown"
	}
}

// MissingFields lists the required submission fields that are blank, in
// request field order.
func (r Record) MissingFields() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", r.Name},
		{"userId", r.UserID},
		{"email", r.Email},
		{"date", r.Date},
		{"time", r.Time},
		{"token", r.Token},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

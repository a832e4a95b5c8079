package models

import "time"

// SubmitRequest is the body of POST /submit.
type SubmitRequest struct {
	Name   string `json:"name"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Token  string `json:"token"`
}

// Record converts the request into a record bound to origin.
func (r SubmitRequest) Record(origin string) Record {
	return Record{
		Name:          r.Name,
		UserID:        r.UserID,
		Email:         r.Email,
		Date:          r.Date,
		Time:          r.Time,
		Token:         r.Token,
		OriginAddress: origin,
	}
}

// SubmitResponse carries the user-facing outcome message.
type SubmitResponse struct {
	Message string `json:"message"`
	Outcome string `json:"outcome"`
}

// Messages shown to the submitting student.
const (
	MessageAccepted         = "Attendance submitted successfully!"
	MessageAlreadySubmitted = "Attendance already submitted"
	MessageCollision        = "Multiple IP attempts detected"
	MessageMissingFields    = "Missing required fields"
)

// RecordResponse is one attendance row in the admin listing.
type RecordResponse struct {
	Name          string `json:"name"`
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Token         string `json:"token"`
	OriginAddress string `json:"ip"`
}

func NewRecordResponse(r Record) RecordResponse {
	return RecordResponse{
		Name:          r.Name,
		UserID:        r.UserID,
		Email:         r.Email,
		Date:          r.Date,
		Time:          r.Time,
		Token:         r.Token,
		OriginAddress: r.OriginAddress,
	}
}

// FlaggedPairingResponse keeps the column naming administrators already use.
type FlaggedPairingResponse struct {
	ID            int64     `json:"id"`
	TName         string    `json:"t_name"`
	TUserID       string    `json:"t_userId"`
	TEmail        string    `json:"t_email"`
	TDate         string    `json:"t_date"`
	TTime         string    `json:"t_time"`
	TToken        string    `json:"t_token"`
	SName         string    `json:"s_name"`
	SUserID       string    `json:"s_userId"`
	SEmail        string    `json:"s_email"`
	OriginAddress string    `json:"ip"`
	FlaggedAt     time.Time `json:"flagged_at"`
}

func NewFlaggedPairingResponse(p FlaggedPairing) FlaggedPairingResponse {
	return FlaggedPairingResponse{
		ID:            p.ID,
		TName:         p.TName,
		TUserID:       p.TUserID,
		TEmail:        p.TEmail,
		TDate:         p.TDate,
		TTime:         p.TTime,
		TToken:        p.TToken,
		SName:         p.SName,
		SUserID:       p.SUserID,
		SEmail:        p.SEmail,
		OriginAddress: p.OriginAddress,
		FlaggedAt:     p.FlaggedAt,
	}
}

package service

import (
	"context"
	"errors"
	"log/slog"

	"rollcall/internal/directory/models"
	"rollcall/internal/token"
	"rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
	"rollcall/pkg/email"
	audit "rollcall/pkg/platform/audit"
	"rollcall/pkg/platform/sentinel"
	"rollcall/pkg/requestcontext"
)

type Store interface {
	Find(ctx context.Context, userID string) (models.Identity, error)
	Save(ctx context.Context, identity models.Identity) error
	Count(ctx context.Context) (int, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// Service resolves user IDs into students ready to submit attendance.
type Service struct {
	store       Store
	auditor     AuditRecorder
	emailDomain string
	logger      *slog.Logger
}

func New(store Store, auditor AuditRecorder, emailDomain string, logger *slog.Logger) *Service {
	return &Service{store: store, auditor: auditor, emailDomain: emailDomain, logger: logger}
}

// Lookup finds the identity for rawUserID, case-insensitively. An ID that
// cannot name an identity is reported as not found.
func (s *Service) Lookup(ctx context.Context, rawUserID string) (models.Student, error) {
	origin := requestcontext.ClientIP(ctx)

	userID, err := domain.ParseUserID(rawUserID)
	if err != nil {
		s.notFound(ctx, rawUserID, origin)
		return models.Student{}, dErrors.New(dErrors.CodeNotFound, models.MessageStudentNotFound)
	}

	identity, err := s.store.Find(ctx, userID.String())
	if errors.Is(err, sentinel.ErrNotFound) {
		s.notFound(ctx, userID.String(), origin)
		return models.Student{}, dErrors.New(dErrors.CodeNotFound, models.MessageStudentNotFound)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "identity lookup failed",
			"user_id", userID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		s.auditor.Record(ctx, audit.Entry{
			Name:          audit.EventStudentLookupFailed,
			Detail:        map[string]any{"userId": userID.String(), "error": err.Error()},
			OriginAddress: origin,
		})
		return models.Student{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up student")
	}

	mail := email.DeriveEmail(identity.UserID, s.emailDomain)
	student := models.Student{
		Name:   identity.Name,
		UserID: identity.UserID,
		Email:  mail,
		Token:  token.Issue(identity.Name, mail),
	}
	s.auditor.Record(ctx, audit.Entry{
		Name:          audit.EventStudentLookup,
		Detail:        map[string]any{"userId": student.UserID, "name": student.Name, "device": requestcontext.Device(ctx)},
		OriginAddress: origin,
	})
	return student, nil
}

func (s *Service) notFound(ctx context.Context, userID, origin string) {
	s.auditor.Record(ctx, audit.Entry{
		Name:          audit.EventStudentNotFound,
		Detail:        map[string]any{"userId": userID},
		OriginAddress: origin,
	})
}

// Seed adds the default identity when the directory is empty.
func (s *Service) Seed(ctx context.Context) error {
	n, err := s.store.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if err := s.store.Save(ctx, models.DefaultIdentity); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "seeded default identity", "user_id", models.DefaultIdentity.UserID)
	return nil
}

// Add registers or renames an identity.
func (s *Service) Add(ctx context.Context, name, rawUserID string) (models.Identity, error) {
	if name == "" {
		return models.Identity{}, dErrors.Validation("name is required", "name")
	}
	userID, err := domain.ParseUserID(rawUserID)
	if err != nil {
		return models.Identity{}, err
	}
	identity := models.Identity{Name: name, UserID: userID.String()}
	if err := s.store.Save(ctx, identity); err != nil {
		return models.Identity{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save identity")
	}
	s.auditor.Record(ctx, audit.Entry{
		Name:   audit.EventStudentSaved,
		Detail: map[string]string{"userId": identity.UserID, "name": identity.Name},
	})
	return identity, nil
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/senelec/reclamations-api/internal/auth"
	"github.com/senelec/reclamations-api/internal/domain"
	"github.com/senelec/reclamations-api/internal/events"
	"github.com/senelec/reclamations-api/internal/repository"
	apperrors "github.com/senelec/reclamations-api/pkg/util"
)

// User facing messages shared by several services.
const (
	MsgUserNotFound       = "Utilisateur non trouvé"
	MsgCategoryNotFound   = "Catégorie non trouvée"
	MsgTicketNotFound     = "Réclamation non trouvée"
	MsgEmailExists        = "Un utilisateur avec cet email existe déjà"
	MsgPhoneExists        = "Un utilisateur avec ce téléphone existe déjà"
	MsgUsernameExists     = "Un utilisateur avec ce nom d'utilisateur existe déjà"
	MsgCategoryNameExists = "Une catégorie avec ce nom existe déjà"
	MsgInvalidTechnician  = "Le compte assigné doit avoir le rôle technicien"
	MsgTechnicianAssigned = "Ce technicien a encore des réclamations assignées"
)

var uniqueMessages = map[string]string{
	repository.FieldEmail:    MsgEmailExists,
	repository.FieldPhone:    MsgPhoneExists,
	repository.FieldUsername: MsgUsernameExists,
	repository.FieldName:     MsgCategoryNameExists,
}

// mapStoreError converts repository errors into DomainErrors.
func mapStoreError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if uv, ok := repository.AsUniqueViolation(err); ok {
		msg, known := uniqueMessages[uv.Field]
		if !known {
			msg = "Valeur déjà utilisée: " + uv.Field
		}
		return apperrors.NewConflict(msg, map[string]any{"field": uv.Field})
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(notFound, nil)
	case errors.Is(err, repository.ErrInvalidTechnician):
		return apperrors.NewValidationError(MsgInvalidTechnician, nil)
	case errors.Is(err, repository.ErrTechnicianAssigned):
		return apperrors.NewValidationError(MsgTechnicianAssigned, nil)
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return apperrors.NewInternalError(err)
}

func requirePrincipal(p *domain.Principal) error {
	if p == nil || p.Account == nil {
		return apperrors.NewUnauthorized(auth.MsgNotLoggedIn)
	}
	return nil
}

type publisher struct {
	dispatcher events.Dispatcher
	now        func() time.Time
}

func (p publisher) publish(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.clock()()
	}
	_ = p.dispatcher.Publish(ctx, event)
}

func (p publisher) clock() func() time.Time {
	if p.now == nil {
		return time.Now
	}
	return p.now
}

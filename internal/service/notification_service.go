package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/senelec/reclamations-api/internal/domain"
	"github.com/senelec/reclamations-api/internal/events"
	"github.com/senelec/reclamations-api/internal/mailer"
	"github.com/senelec/reclamations-api/internal/observability"
	"github.com/senelec/reclamations-api/internal/repository"
)

// Submitter runs jobs off the request path.
type Submitter interface {
	Submit(name string, job func(ctx context.Context) error) bool
}

// NotificationService owns outbound email and reacts to domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     mailer.Mailer
	accounts   repository.AccountRepository
	tickets    repository.TicketRepository
	metrics    *observability.Metrics
	logger     *zap.Logger
	submitter  Submitter
}

// NotificationDependencies bundles collaborators of the notification service.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Mailer     mailer.Mailer
	Accounts   repository.AccountRepository
	Tickets    repository.TicketRepository
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		mailer:     deps.Mailer,
		accounts:   deps.Accounts,
		tickets:    deps.Tickets,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// UseSubmitter routes event driven emails through s. Without a submitter
// they are sent inline.
func (n *NotificationService) UseSubmitter(s Submitter) {
	n.submitter = s
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.SubscribeAll(n.logEvent)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
}

// SendCredentials emails the temp password to account. Failures are logged
// and reported as false; they never fail the caller.
func (n *NotificationService) SendCredentials(ctx context.Context, account *domain.Account, tempPassword string) bool {
	if n.mailer == nil {
		return false
	}
	msg, err := mailer.Credentials(account, tempPassword)
	if err != nil {
		n.logger.Error("render credentials email", zap.Error(err))
		return false
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		n.logger.Warn("credentials email not sent",
			zap.String("account_id", account.ID),
			zap.String("email", account.Email),
			zap.Error(err))
		return false
	}
	return true
}

func (n *NotificationService) logEvent(_ context.Context, event events.Event) error {
	n.metrics.RecordEvent(string(event.Type))
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("ticket_id", event.TicketID),
		zap.String("account_id", event.AccountID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok || !payload.NewStatus.RequiresResponse() {
		return nil
	}
	job := func(ctx context.Context) error {
		return n.sendResolutionNotice(ctx, event.TicketID)
	}
	if n.submitter != nil {
		if n.submitter.Submit("resolution_notice", job) {
			return nil
		}
		return errors.New("notification queue unavailable")
	}
	if err := job(ctx); err != nil {
		n.logger.Warn("resolution notice not sent", zap.String("ticket_id", event.TicketID), zap.Error(err))
	}
	return nil
}

func (n *NotificationService) sendResolutionNotice(ctx context.Context, ticketID string) error {
	if n.mailer == nil || n.tickets == nil || n.accounts == nil {
		return nil
	}
	ticket, err := n.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	client, err := n.accounts.GetByID(ctx, ticket.AccountID)
	if err != nil {
		return err
	}
	msg, err := mailer.Resolution(client, ticket)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, msg)
}

// Package dispatch orchestrates notification delivery: it builds content once
// per event, evaluates eligibility per recipient and channel, creates the
// delivery records, and hands eligible deliveries to the retry scheduler.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tripnotify/internal/config"
	"tripnotify/internal/domain/entity"
	"tripnotify/internal/infra/provider"
	"tripnotify/internal/observability/metrics"
	"tripnotify/internal/repository"
	"tripnotify/internal/resilience/retryqueue"
	"tripnotify/internal/usecase/content"
	"tripnotify/internal/usecase/eligibility"
)

// defaultFanoutConcurrency bounds concurrent per-recipient evaluation.
const defaultFanoutConcurrency = 16

// attemptTimeout bounds one provider attempt so a hung gateway call cannot
// hold an operation's in-flight marker indefinitely.
const attemptTimeout = 30 * time.Second

// smsEligibleTypes lists the notification categories time-sensitive enough to
// warrant an SMS. Everything else is skipped on the SMS channel with
// "sms_category_ineligible" regardless of recipient preferences.
var smsEligibleTypes = map[entity.NotificationType]bool{
	entity.TypePaymentRequest:       true,
	entity.TypePaymentSettled:       true,
	entity.TypeTripReminder:         true,
	entity.TypeTripInvite:           true,
	entity.TypeJoinRequest:          true,
	entity.TypeJoinApproved:         true,
	entity.TypeCalendarEventUpdated: true,
}

// SMSEligibleCategory reports whether the given notification type may be
// delivered over SMS at all.
func SMSEligibleCategory(t entity.NotificationType) bool {
	return smsEligibleTypes[t]
}

// Recipient carries one recipient's identity and the eligibility facts the
// evaluator consumes. Facts are supplied fresh by the caller on every
// dispatch; the engine never persists preference data.
type Recipient struct {
	UserID string

	// Per-channel toggles.
	PushEnabled  bool
	EmailEnabled bool
	SMSEnabled   bool

	// CategoryEnabled is the recipient's toggle for this event's category.
	CategoryEnabled bool

	// SMSEntitled reports whether the recipient's plan includes SMS delivery.
	SMSEntitled bool

	// SMSPhone is the recipient's registered phone number, empty if none.
	SMSPhone string

	// QuietHours is the recipient's local quiet-hours window, nil if unset.
	QuietHours *eligibility.QuietWindow
}

// channelEnabled returns the recipient's toggle for the given channel.
func (r Recipient) channelEnabled(ch entity.DeliveryChannel) bool {
	switch ch {
	case entity.ChannelPush:
		return r.PushEnabled
	case entity.ChannelEmail:
		return r.EmailEnabled
	case entity.ChannelSMS:
		return r.SMSEnabled
	default:
		return false
	}
}

// Request is one dispatch: an event fanned out to a set of recipients over a
// set of channels. An empty Channels slice means every globally enabled
// channel.
type Request struct {
	Event      entity.NotificationEvent
	Channels   []entity.DeliveryChannel
	Recipients []Recipient
}

// Service orchestrates notification dispatch.
type Service interface {
	// Dispatch builds content for the event, evaluates eligibility for every
	// recipient and channel, and enqueues eligible deliveries. The returned
	// records carry the evaluator's initial status; records that were
	// enqueued settle asynchronously through the retry scheduler.
	//
	// Parameters:
	//   - ctx: Context for cancellation control
	//   - req: The event, target channels, and recipients with their facts
	//
	// Returns:
	//   - []entity.DeliveryRecord: One record per recipient per channel
	//   - error: Non-nil on invalid events or empty recipient lists
	Dispatch(ctx context.Context, req Request) ([]entity.DeliveryRecord, error)

	// Preview builds the content for all three channels without dispatching.
	Preview(ev entity.NotificationEvent) (entity.AllChannelContent, error)

	// ProcessQueue runs one retry-scheduler processing pass. Intended for
	// the worker's poll loop.
	ProcessQueue(ctx context.Context)

	// QueueSnapshot returns a copy of the pending operations for health
	// endpoints and caller-side persistence.
	QueueSnapshot() []entity.QueuedOperation

	// Shutdown stops accepting dispatches and waits for in-flight processing
	// passes to settle or the context to expire.
	Shutdown(ctx context.Context) error
}

// Providers maps each delivery channel to its provider.
type Providers struct {
	Push  provider.Provider
	Email provider.Provider
	SMS   provider.Provider
}

// forChannel returns the provider for a channel, or nil if none is wired.
func (p Providers) forChannel(ch entity.DeliveryChannel) provider.Provider {
	switch ch {
	case entity.ChannelPush:
		return p.Push
	case entity.ChannelEmail:
		return p.Email
	case entity.ChannelSMS:
		return p.SMS
	default:
		return nil
	}
}

// service is the concrete implementation of Service.
type service struct {
	builder   *content.Builder
	branding  *config.BrandingConfig
	providers Providers
	queue     *retryqueue.Queue
	history   repository.DeliveryHistoryRepository
	now       func() time.Time

	wg             sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// Options tunes the dispatch service. Zero values select defaults.
type Options struct {
	// Queue overrides the retry-scheduler options (backoff schedule, attempt
	// budget, concurrency, clock).
	Queue retryqueue.Options

	// Now is the clock used for quiet-hours evaluation. Defaults to time.Now.
	Now func() time.Time

	// History receives every delivery record state, best effort. Nil disables
	// persistence; the engine's in-memory lifecycle is unaffected either way.
	History repository.DeliveryHistoryRepository
}

// NewService creates a dispatch service wired to the given providers.
//
// A nil branding falls back to the compiled-in defaults. Providers left nil
// are replaced with the no-op provider so a partially configured deployment
// still settles its records.
func NewService(branding *config.BrandingConfig, providers Providers, opts Options) Service {
	if branding == nil {
		branding = config.DefaultBranding()
	}
	if providers.Push == nil {
		providers.Push = provider.NewNoop()
	}
	if providers.Email == nil {
		providers.Email = provider.NewNoop()
	}
	if providers.SMS == nil {
		providers.SMS = provider.NewNoop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.Queue.Now == nil {
		opts.Queue.Now = now
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	svc := &service{
		builder:        content.NewBuilder(branding),
		branding:       branding,
		providers:      providers,
		history:        opts.History,
		now:            now,
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
	svc.queue = retryqueue.New(svc.deliver, opts.Queue, retryqueue.Callbacks{
		OnSuccess: func(op entity.QueuedOperation, res entity.ProviderAttemptResult) {
			RecordOutcome(string(op.Record.Channel), "sent")
			rec := op.Record
			rec.Apply(res)
			svc.persistRecord(rec)
		},
		OnRetry: func(op entity.QueuedOperation, err error, next time.Time) {
			slog.Warn("delivery attempt failed, retry scheduled",
				slog.String("operation_id", op.ID),
				slog.Int("attempts", op.Attempts),
				slog.Time("next_attempt_at", next),
				slog.Any("error", err))
		},
		OnPermanentFailure: func(op entity.QueuedOperation, err error) {
			RecordOutcome(string(op.Record.Channel), "failed")
			rec := op.Record
			rec.MarkFailed(err.Error())
			svc.persistRecord(rec)
			slog.Error("delivery failed permanently",
				slog.String("operation_id", op.ID),
				slog.String("notification_id", op.Record.NotificationID),
				slog.String("channel", string(op.Record.Channel)),
				slog.Int("attempts", op.Attempts),
				slog.Any("error", err))
		},
	})
	return svc
}

// deliver is the retry scheduler's delivery function: it hands one queued
// operation's content to the channel's provider.
func (s *service) deliver(ctx context.Context, op entity.QueuedOperation) entity.ProviderAttemptResult {
	p := s.providers.forChannel(op.Record.Channel)
	if p == nil {
		return entity.ProviderAttemptResult{
			Err: fmt.Errorf("no provider wired for channel %q", op.Record.Channel),
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	start := time.Now()
	messageID, err := p.Send(attemptCtx, provider.Delivery{
		NotificationID:  op.Record.NotificationID,
		RecipientUserID: op.Record.RecipientUserID,
		Channel:         op.Record.Channel,
		Content:         op.Content,
	})
	metrics.RecordProviderCall(string(op.Record.Channel), time.Since(start), err == nil)
	if err != nil {
		return entity.ProviderAttemptResult{Err: err}
	}
	return entity.ProviderAttemptResult{Success: true, ProviderMessageID: messageID}
}

// persistRecord writes one record state to the history store, best effort.
// Persistence failures are logged and never block delivery.
func (s *service) persistRecord(rec entity.DeliveryRecord) {
	if s.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.history.Upsert(ctx, rec); err != nil {
		slog.Warn("delivery history write failed",
			slog.String("notification_id", rec.NotificationID),
			slog.String("recipient_user_id", rec.RecipientUserID),
			slog.String("channel", string(rec.Channel)),
			slog.Any("error", err))
	}
}

// Dispatch implements Service.Dispatch.
func (s *service) Dispatch(ctx context.Context, req Request) ([]entity.DeliveryRecord, error) {
	select {
	case <-s.shutdownCtx.Done():
		return nil, ErrShutdown
	default:
	}

	if err := entity.ValidateEvent(req.Event); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	if len(req.Recipients) == 0 {
		return nil, ErrNoRecipients
	}

	channels := req.Channels
	if len(channels) == 0 {
		channels = s.enabledChannels()
	}

	notificationID := uuid.New().String()
	allContent := s.builder.BuildAllChannels(req.Event)
	now := s.now()

	RecordDispatch(string(req.Event.Type))
	slog.Info("dispatching notification",
		slog.String("notification_id", notificationID),
		slog.String("type", string(req.Event.Type)),
		slog.Int("recipients", len(req.Recipients)),
		slog.Int("channels", len(channels)))

	perRecipient := make([][]entity.DeliveryRecord, len(req.Recipients))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(defaultFanoutConcurrency)
	for i, recipient := range req.Recipients {
		g.Go(func() error {
			records, err := s.dispatchRecipient(notificationID, req.Event, recipient, channels, allContent, now)
			if err != nil {
				return err
			}
			perRecipient[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]entity.DeliveryRecord, 0, len(req.Recipients)*len(channels))
	for _, records := range perRecipient {
		all = append(all, records...)
	}
	metrics.RecordDispatchFanout(len(all))

	// Kick a processing pass so due operations get their first attempt
	// without waiting for the worker's next poll.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.queue.Process(s.shutdownCtx)
	}()

	return all, nil
}

// dispatchRecipient evaluates every channel for one recipient and enqueues
// the eligible deliveries.
func (s *service) dispatchRecipient(
	notificationID string,
	ev entity.NotificationEvent,
	recipient Recipient,
	channels []entity.DeliveryChannel,
	allContent entity.AllChannelContent,
	now time.Time,
) ([]entity.DeliveryRecord, error) {
	records, err := entity.NewDeliveryRecords(notificationID, recipient.UserID, channels)
	if err != nil {
		return nil, fmt.Errorf("create delivery records: %w", err)
	}

	inQuietHours := recipient.QuietHours != nil && recipient.QuietHours.Contains(now)

	for i := range records {
		ch := records[i].Channel
		result := eligibility.Evaluate(eligibility.Input{
			Channel:             ch,
			ChannelEnabled:      recipient.channelEnabled(ch) && s.globallyEnabled(ch),
			CategoryEnabled:     recipient.CategoryEnabled,
			InQuietHours:        inQuietHours,
			SMSEligibleCategory: SMSEligibleCategory(ev.Type),
			SMSEntitled:         recipient.SMSEntitled,
			HasSMSPhone:         recipient.SMSPhone != "",
		})
		records[i].Status = result.Status
		records[i].Reason = result.Reason
		RecordDeliveryRecord(string(ch), string(result.Status))
		s.persistRecord(records[i])

		if result.Status == entity.StatusSkipped {
			RecordSkipped(result.Reason)
			continue
		}

		op := entity.QueuedOperation{
			ID:      fmt.Sprintf("%s:%s:%s", notificationID, recipient.UserID, ch),
			Record:  records[i],
			Content: allContent.ForChannel(ch),
		}
		if result.Reason == eligibility.ReasonQuietHoursDeferred {
			op.ScheduledAt = recipient.QuietHours.NextEligibleAt(now)
		}
		s.queue.Enqueue(op, nil)
	}
	return records, nil
}

// Preview implements Service.Preview.
func (s *service) Preview(ev entity.NotificationEvent) (entity.AllChannelContent, error) {
	if err := entity.ValidateEvent(ev); err != nil {
		return entity.AllChannelContent{}, fmt.Errorf("validate event: %w", err)
	}
	return s.builder.BuildAllChannels(ev), nil
}

// ProcessQueue implements Service.ProcessQueue.
func (s *service) ProcessQueue(ctx context.Context) {
	s.queue.Process(ctx)
}

// QueueSnapshot implements Service.QueueSnapshot.
func (s *service) QueueSnapshot() []entity.QueuedOperation {
	return s.queue.Snapshot()
}

// Shutdown implements Service.Shutdown.
func (s *service) Shutdown(ctx context.Context) error {
	s.shutdownCancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("dispatch service shut down cleanly")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dispatch shutdown timed out: %w", ctx.Err())
	}
}

// enabledChannels returns the globally enabled channels in stable order.
func (s *service) enabledChannels() []entity.DeliveryChannel {
	var channels []entity.DeliveryChannel
	if s.branding.Channels.Push {
		channels = append(channels, entity.ChannelPush)
	}
	if s.branding.Channels.Email {
		channels = append(channels, entity.ChannelEmail)
	}
	if s.branding.Channels.SMS {
		channels = append(channels, entity.ChannelSMS)
	}
	return channels
}

// globallyEnabled reports the deployment-wide toggle for one channel.
func (s *service) globallyEnabled(ch entity.DeliveryChannel) bool {
	switch ch {
	case entity.ChannelPush:
		return s.branding.Channels.Push
	case entity.ChannelEmail:
		return s.branding.Channels.Email
	case entity.ChannelSMS:
		return s.branding.Channels.SMS
	default:
		return false
	}
}

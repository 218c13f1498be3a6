package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vendor-ops-ledger/internal/access"
	"github.com/vendor-ops-ledger/internal/config"
	"github.com/vendor-ops-ledger/internal/domain/notification"
	"github.com/vendor-ops-ledger/internal/domain/shared"
	"github.com/vendor-ops-ledger/internal/metrics"
	"github.com/vendor-ops-ledger/internal/store"
)

const defaultIntentTimeout = 10 * time.Second

// FacadeDeps wires the facade to its collaborators
type FacadeDeps struct {
	Store         store.Store
	Ledger        LedgerManager
	Promos        PromoManager
	Payouts       PayoutManager
	Lifecycle     LifecycleManager
	Notifier      Notifier
	Notifications notification.Repository
	Authorizer    access.Authorizer
	Metrics       metrics.Recorder
	Logger        *slog.Logger
	Vendor        config.VendorConfig
	IntentTimeout time.Duration
}

// Facade is the single entry point of the engine. Every mutation is gated by role,
// shape-checked, run in one store transaction and followed by at most one notification.
type Facade struct {
	store         store.Store
	ledger        LedgerManager
	promos        PromoManager
	payouts       PayoutManager
	lifecycle     LifecycleManager
	notifier      Notifier
	notifications notification.Repository
	authorizer    access.Authorizer
	validate      *validator.Validate
	metrics       metrics.Recorder
	logger        *slog.Logger
	vendor        config.VendorConfig
	intentTimeout time.Duration
	now           func() time.Time
}

func NewFacade(deps FacadeDeps) *Facade {
	timeout := deps.IntentTimeout
	if timeout <= 0 {
		timeout = defaultIntentTimeout
	}
	recorder := deps.Metrics
	if recorder == nil {
		recorder = metrics.NewNoOpCollector()
	}
	authorizer := deps.Authorizer
	if authorizer == nil {
		authorizer = access.NewPolicy()
	}

	return &Facade{
		store:         deps.Store,
		ledger:        deps.Ledger,
		promos:        deps.Promos,
		payouts:       deps.Payouts,
		lifecycle:     deps.Lifecycle,
		notifier:      deps.Notifier,
		notifications: deps.Notifications,
		authorizer:    authorizer,
		validate:      newValidator(),
		metrics:       recorder,
		logger:        deps.Logger,
		vendor:        deps.Vendor,
		intentTimeout: timeout,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// newValidator reports fields by their json names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// mutation is the body of an intent. It returns the event to announce once the
// transaction has committed, or nil when nothing user-visible changed.
type mutation func(ctx context.Context, tx store.Tx) (*notification.Event, error)

func (f *Facade) loggerFor(actor Actor, intent string) *slog.Logger {
	logger := f.logger.With("intent", intent, "role", string(actor.Role))
	if actor.CorrelationID != "" {
		logger = logger.With("correlation_id", actor.CorrelationID)
	}
	return logger
}

func (f *Facade) run(ctx context.Context, actor Actor, intent string, op access.Operation, req any, fn mutation) (err error) {
	start := time.Now()
	logger := f.loggerFor(actor, intent)
	defer func() {
		f.metrics.RecordIntent(intent, time.Since(start), err)
	}()

	if err = access.Check(f.authorizer, actor.Role, op); err != nil {
		logger.Warn("Intent rejected", "error", err)
		return err
	}
	if req != nil {
		if err = f.validateRequest(req); err != nil {
			logger.Debug("Intent failed validation", "error", err)
			return err
		}
	}
	if err = f.store.Ready(ctx); err != nil {
		return err
	}

	txCtx, cancel := context.WithTimeout(ctx, f.intentTimeout)
	defer cancel()

	var event *notification.Event
	err = f.store.ExecuteTx(txCtx, func(tx store.Tx) error {
		var fnErr error
		event, fnErr = fn(txCtx, tx)
		return fnErr
	})
	if err != nil {
		err = translate(intent, err)
		if shared.KindOf(err) == "" {
			logger.Error("Intent failed", "error", err)
		} else {
			logger.Info("Intent refused", "error", err)
		}
		return err
	}

	logger.Info("Intent committed", "duration", time.Since(start))
	if event != nil && f.notifier != nil {
		if event.Recipient == "" {
			event.Recipient = f.vendor.NotificationEmail
		}
		f.notifier.Notify(ctx, *event)
	}
	return nil
}

// read gates a query the same way run gates a mutation and hands out the snapshot repositories
func (f *Facade) read(ctx context.Context, actor Actor, query string, op access.Operation) (store.Tx, error) {
	if err := access.Check(f.authorizer, actor.Role, op); err != nil {
		f.loggerFor(actor, query).Warn("Query rejected", "error", err)
		return nil, err
	}
	if err := f.store.Ready(ctx); err != nil {
		return nil, err
	}
	return f.store.Read(), nil
}

func (f *Facade) validateRequest(req any) error {
	err := f.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		problems := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			problems = append(problems, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
		return shared.Validation("invalid request: %s", strings.Join(problems, "; "))
	}
	return shared.Validation("invalid request: %v", err)
}

// translate leaves domain errors alone, turns expired deadlines into Conflict and
// wraps anything else with the intent name
func translate(intent string, err error) error {
	var domainErr *shared.Error
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return shared.Conflict("intent", intent, err)
	}
	return fmt.Errorf("%s failed: %w", intent, err)
}

func newEvent(eventType notification.EventType, title, message, view, linkedID string) *notification.Event {
	event := notification.NewEvent(eventType, title, message, view, linkedID)
	return &event
}

// UserMessage renders an engine error as text fit for the vendor's screen
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *shared.Error
	detail := ""
	if errors.As(err, &domainErr) {
		detail = domainErr.Message
	}

	switch shared.KindOf(err) {
	case shared.KindNotFound:
		return "The requested record could not be found."
	case shared.KindInsufficientFunds:
		return "There are not enough funds for this transaction."
	case shared.KindAlreadySigned:
		return "This document has already been signed."
	case shared.KindAlreadyCompleted:
		return "This revision has already been completed."
	case shared.KindAlreadyPaid:
		return "Some of these payments have already been paid."
	case shared.KindPromoExpiredOrExhausted:
		return "This promo code has expired or has no uses left."
	case shared.KindNothingToPay:
		return "There is nothing to pay for the selected projects."
	case shared.KindPermissionDenied:
		return "You do not have permission to do that."
	case shared.KindConflict:
		return "Someone else changed this at the same time. Please try again."
	case shared.KindUnavailable:
		return "The data is still loading. Please try again in a moment."
	case shared.KindValidation:
		if detail != "" {
			return "Please check your input: " + detail + "."
		}
		return "Please check your input."
	case shared.KindInvalidTransition:
		return "That step is not allowed from the project's current status."
	case shared.KindDuplicate:
		return "This has already been recorded."
	default:
		return "Something went wrong. Please try again."
	}
}

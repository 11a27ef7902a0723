// Package service ingests calendar webhook deliveries. Every delivery
// carries an idempotency key; a key is reserved before the interview is
// touched and released again if processing fails, so retries of a failed
// delivery are never swallowed while successful ones are processed exactly
// once.
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	interviews "github.com/hireline/talenttrack/domains/interviews/be/service"
	"github.com/hireline/talenttrack/platform/go/idempotency"
)

// KeyPrefix namespaces idempotency keys in the shared store.
const KeyPrefix = "webhook:idempotency:"

// DefaultTTL bounds how long a processed key blocks replays.
const DefaultTTL = 24 * time.Hour

// Errors returned by the service layer.
var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUnknownEventType = errors.New("unknown webhook event type")
)

// ValidationError is returned when the delivery payload is invalid.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	return "validation error"
}

// Delivery is one inbound calendar event.
type Delivery struct {
	EventID        string
	Type           string
	InterviewID    uuid.UUID
	ScheduledAt    *time.Time
	IdempotencyKey string
	Signature      string
}

// Result reports what happened to a delivery. Idempotent is true when the
// key had already been processed and the event was skipped. DeliveryCount
// is best-effort per-instance telemetry, never used for correctness.
type Result struct {
	Processed     bool                  `json:"processed"`
	Idempotent    bool                  `json:"idempotent"`
	DeliveryCount int64                 `json:"webhookCount"`
	Interview     *interviews.Interview `json:"result,omitempty"`
}

// InterviewUpdater applies calendar events to interviews.
type InterviewUpdater interface {
	ApplyCalendarEvent(ctx context.Context, id uuid.UUID, event interviews.CalendarEvent, scheduledAt *time.Time) (interviews.Interview, error)
}

// Service handles webhook ingestion.
type Service struct {
	secret     string
	ttl        time.Duration
	store      idempotency.Store
	interviews InterviewUpdater
	logger     *zap.Logger
	delivered  atomic.Int64
}

// New constructs a Service. A non-positive ttl falls back to DefaultTTL.
func New(secret string, ttl time.Duration, store idempotency.Store, interviews InterviewUpdater, logger *zap.Logger) *Service {
	if secret == "" {
		panic("webhook secret is required")
	}
	if store == nil {
		panic("idempotency store is required")
	}
	if interviews == nil {
		panic("interview updater is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: secret, ttl: ttl, store: store, interviews: interviews, logger: logger}
}

// Ingest validates, deduplicates and applies one delivery. Rejected
// deliveries (bad signature, unknown type, missing key, unknown interview)
// never record the idempotency key, so the sender can retry them.
func (s *Service) Ingest(ctx context.Context, d Delivery) (Result, error) {
	if subtle.ConstantTimeCompare([]byte(d.Signature), []byte(s.secret)) != 1 {
		return Result{}, ErrInvalidSignature
	}

	event, err := eventOf(d.Type)
	if err != nil {
		return Result{}, err
	}
	if d.IdempotencyKey == "" {
		return Result{}, &ValidationError{Fields: map[string]string{"idempotencyKey": "idempotencyKey is required"}}
	}

	key := KeyPrefix + d.IdempotencyKey
	reserved, err := s.store.SetIfAbsent(ctx, key, s.ttl)
	if err != nil {
		return Result{}, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if !reserved {
		s.logger.Info("calendar webhook skipped",
			zap.String("interviewId", d.InterviewID.String()),
			zap.String("type", d.Type),
			zap.String("idempotencyKey", d.IdempotencyKey))
		return Result{Idempotent: true, DeliveryCount: s.delivered.Add(1)}, nil
	}

	iv, err := s.interviews.ApplyCalendarEvent(ctx, d.InterviewID, event, d.ScheduledAt)
	if err != nil {
		// Release the key so a later retry of this delivery is processed.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("release idempotency key",
				zap.String("idempotencyKey", d.IdempotencyKey), zap.Error(delErr))
		}
		return Result{}, err
	}

	s.logger.Info("calendar webhook processed",
		zap.String("interviewId", d.InterviewID.String()),
		zap.String("type", d.Type),
		zap.String("idempotencyKey", d.IdempotencyKey))
	return Result{Processed: true, DeliveryCount: s.delivered.Add(1), Interview: &iv}, nil
}

// Delivered returns the number of deliveries accepted by this instance.
func (s *Service) Delivered() int64 {
	return s.delivered.Load()
}

func eventOf(typ string) (interviews.CalendarEvent, error) {
	switch interviews.CalendarEvent(typ) {
	case interviews.EventCreated:
		return interviews.EventCreated, nil
	case interviews.EventUpdated:
		return interviews.EventUpdated, nil
	case interviews.EventCancelled:
		return interviews.EventCancelled, nil
	}
	return "", ErrUnknownEventType
}

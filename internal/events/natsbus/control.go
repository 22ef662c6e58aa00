package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/trucogame/internal/model"
)

// Controls are the operator actions a control message can trigger
type Controls interface {
	ForceNewRound(ctx context.Context, code model.RoomCode) error
	ResetMatch(ctx context.Context, code model.RoomCode) error
}

// ErrUnknownAction is returned for a control message with an unknown action
var ErrUnknownAction = errors.New("unknown control action")

// handleTimeout bounds one control action
const handleTimeout = 10 * time.Second

// ControlSubscriber applies control messages from the control subject
type ControlSubscriber struct {
	transport Transport
	prefix    string
	controls  Controls
	logger    *slog.Logger

	sub Subscription
}

// NewControlSubscriber creates a new ControlSubscriber
func NewControlSubscriber(transport Transport, prefix string, controls Controls, logger *slog.Logger) *ControlSubscriber {
	return &ControlSubscriber{
		transport: transport,
		prefix:    prefix,
		controls:  controls,
		logger:    logger.With(slog.String("component", "nats-control")),
	}
}

// Start subscribes to the control subject. Instances share a queue group so
// each message is applied once.
func (s *ControlSubscriber) Start() error {
	subject := ControlSubject(s.prefix)
	sub, err := s.transport.QueueSubscribe(subject, QueueGroupControl, s.handle)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", subject, err)
	}
	s.sub = sub
	s.logger.Info("nats control subscriber started", slog.String("subject", subject))
	return nil
}

// Stop unsubscribes
func (s *ControlSubscriber) Stop() error {
	if s.sub == nil {
		return nil
	}
	err := s.sub.Unsubscribe()
	s.sub = nil
	return err
}

func (s *ControlSubscriber) handle(data []byte) {
	var msg model.ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.logger.Warn("malformed control message", slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if err := s.Apply(ctx, msg); err != nil {
		level := slog.LevelError
		if model.IsRuleViolation(err) || errors.Is(err, ErrUnknownAction) {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "control message rejected",
			slog.String("room_code", string(msg.Room)),
			slog.String("action", string(msg.Action)),
			slog.String("error", err.Error()))
		return
	}
	s.logger.Info("control message applied",
		slog.String("room_code", string(msg.Room)),
		slog.String("action", string(msg.Action)))
}

// Apply performs one control message
func (s *ControlSubscriber) Apply(ctx context.Context, msg model.ControlMessage) error {
	switch msg.Action {
	case model.ControlNewRound:
		return s.controls.ForceNewRound(ctx, msg.Room)
	case model.ControlResetMatch:
		return s.controls.ResetMatch(ctx, msg.Room)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
	}
}

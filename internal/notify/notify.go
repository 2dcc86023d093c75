package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/rohmanhakim/shell-cache/internal/metadata"
	"github.com/rohmanhakim/shell-cache/pkg/failure"
)

/*
Responsibilities

- Parse incoming push payloads and show them as notifications
- Route a notification click to an existing client when one is open,
  opening a fresh one otherwise

Push Semantics

- A malformed payload is rejected; nothing is shown for garbage
- Missing title and link fall back to app defaults; a push without a deep
  link still lands the user on the shell
- Display and focus failures are recorded, never escalated; a lost
  notification must not disturb the interception layer
*/

const defaultTitle = "LexSim"

// Notifier shows a notification to the user.
type Notifier interface {
	Show(ctx context.Context, notification Notification) error
}

// WindowClients finds and controls open application windows.
type WindowClients interface {
	// Focus brings a window on target to the front, reporting whether one
	// was found.
	Focus(ctx context.Context, target url.URL) (bool, error)
	OpenWindow(ctx context.Context, target url.URL) error
}

type Handler struct {
	origin   url.URL
	notifier Notifier
	clients  WindowClients

	metadataSink metadata.EventSink
	logger       *zap.Logger
}

func NewHandler(
	origin url.URL,
	notifier Notifier,
	clients WindowClients,
	metadataSink metadata.EventSink,
	logger *zap.Logger,
) *Handler {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		origin:       origin,
		notifier:     notifier,
		clients:      clients,
		metadataSink: metadataSink,
		logger:       logger,
	}
}

// HandlePush parses raw and shows the notification. Only a malformed payload
// is an error; a failing notifier is recorded and swallowed.
func (h *Handler) HandlePush(ctx context.Context, raw []byte) failure.ClassifiedError {
	notification, err := h.parse(raw)
	if err != nil {
		h.metadataSink.RecordError(
			time.Now(),
			"notify",
			"Handler.HandlePush",
			metadata.CausePayloadInvalid,
			err.Error(),
			nil,
		)
		return err
	}

	if showErr := h.notifier.Show(ctx, notification); showErr != nil {
		h.logger.Warn("notification display failed",
			zap.String("title", notification.title),
			zap.Error(showErr),
		)
	}
	return nil
}

// HandleClick focuses an open window on the notification's link, opening a
// new one when none exists.
func (h *Handler) HandleClick(ctx context.Context, notification Notification) failure.ClassifiedError {
	focused, err := h.clients.Focus(ctx, notification.link)
	if err != nil {
		h.logger.Warn("window focus failed", zap.Error(err))
	}
	if focused {
		return nil
	}

	if err := h.clients.OpenWindow(ctx, notification.link); err != nil {
		return &NotifyError{
			Message:   fmt.Sprintf("open %s: %v", notification.link.String(), err),
			Retryable: true,
			Cause:     ErrCauseClientFailure,
		}
	}
	return nil
}

func (h *Handler) parse(raw []byte) (Notification, failure.ClassifiedError) {
	var payload pushPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Notification{}, &NotifyError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCausePayloadInvalid,
		}
	}

	title := payload.Title
	if title == "" {
		title = defaultTitle
	}

	link := h.origin
	if payload.Data.URL != "" {
		parsed, err := url.Parse(payload.Data.URL)
		if err != nil {
			return Notification{}, &NotifyError{
				Message:   fmt.Sprintf("link: %v", err),
				Retryable: false,
				Cause:     ErrCausePayloadInvalid,
			}
		}
		link = *h.origin.ResolveReference(parsed)
	}

	return Notification{
		title: title,
		body:  payload.Body,
		link:  link,
	}, nil
}

package notify

import (
	"context"
	"net/url"

	"go.uber.org/zap"
)

// LogNotifier renders notifications as log lines. The daemon has no display
// surface of its own, so this is the default sink for push messages.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Show(_ context.Context, notification Notification) error {
	link := notification.Link()
	n.logger.Info("notification",
		zap.String("title", notification.Title()),
		zap.String("body", notification.Body()),
		zap.String("url", link.String()),
	)
	return nil
}

// NoopWindows is the registry for deployments without window control: nothing
// to focus, and opening is a silent no-op.
type NoopWindows struct{}

func (NoopWindows) Focus(context.Context, url.URL) (bool, error) {
	return false, nil
}

func (NoopWindows) OpenWindow(context.Context, url.URL) error {
	return nil
}

package logger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Notifier delivers a formatted message to an out-of-band channel,
// for example a Telegram chat.
type Notifier interface {
	Send(msg string)
}

// AlertHandler is a slog.Handler that forwards records at or above
// minLevel to a Notifier, after passing them to the wrapped handler.
type AlertHandler struct {
	handler  slog.Handler
	notifier Notifier
	minLevel slog.Level
	mu       sync.Mutex
	attrs    []slog.Attr
	group    string
}

func NewAlertHandler(handler slog.Handler, notifier Notifier, minLevel slog.Level) *AlertHandler {
	return &AlertHandler{
		handler:  handler,
		notifier: notifier,
		minLevel: minLevel,
		attrs:    make([]slog.Attr, 0),
	}
}

func (h *AlertHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *AlertHandler) Handle(ctx context.Context, record slog.Record) error {
	err := h.handler.Handle(ctx, record)
	if err != nil {
		return err
	}

	if record.Level < h.minLevel || h.notifier == nil {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	msg := fmt.Sprintf("*%s* %s", record.Level.String(), record.Message)
	if h.group != "" {
		msg = fmt.Sprintf("*%s* %s.%s", record.Level.String(), h.group, record.Message)
	}
	for _, attr := range h.attrs {
		msg += fmt.Sprintf("\n%s: %v", attr.Key, attr.Value)
	}
	record.Attrs(func(attr slog.Attr) bool {
		msg += fmt.Sprintf("\n%s: %v", attr.Key, attr.Value)
		return true
	})

	h.notifier.Send(msg)
	return nil
}

func (h *AlertHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)

	return &AlertHandler{
		handler:  h.handler.WithAttrs(attrs),
		notifier: h.notifier,
		minLevel: h.minLevel,
		attrs:    newAttrs,
		group:    h.group,
	}
}

func (h *AlertHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &AlertHandler{
		handler:  h.handler.WithGroup(name),
		notifier: h.notifier,
		minLevel: h.minLevel,
		attrs:    h.attrs,
		group:    group,
	}
}

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"taskflow/internal/logger"
)

type NATSPublisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewNATSPublisher connects to url and keeps reconnecting for the life of the process.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("taskflow"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	logger.Info("NATS connected", "url", nc.ConnectedUrl())
	return &NATSPublisher{
		nc:     nc,
		logger: logger.GetLogger().With("component", "nats_publisher"),
	}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.nc.Publish(e.Subject(), data); err != nil {
		return fmt.Errorf("publish %s: %w", e.Subject(), err)
	}

	p.logger.DebugContext(ctx, "Event published", "subject", e.Subject(), "id", e.ID)
	return nil
}

// Close flushes pending messages before closing the connection.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}

var _ Publisher = (*NATSPublisher)(nil)

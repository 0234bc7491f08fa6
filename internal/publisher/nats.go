package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"busline/internal/service"
)

// NATSPublisher публикует события интереса в subject <prefix>.<line_id>.
type NATSPublisher struct {
	nc      *nats.Conn
	prefix  string
	metrics PublisherMetrics
	log     *zap.Logger
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

func NewNATSPublisher(url, prefix string, m PublisherMetrics, log *zap.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("busline"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Warn("NATS: соединение потеряно", zap.Error(err))
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Info("NATS: соединение восстановлено")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Info("NATS: соединение закрыто")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к NATS %s: %w", url, err)
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return &NATSPublisher{nc: nc, prefix: strings.TrimSuffix(prefix, "."), metrics: m, log: log}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

// Subject возвращает subject событий линии.
func (p *NATSPublisher) Subject(lineID uint) string {
	return Subject(p.prefix, lineID)
}

// NotifyInterest публикует событие. Доставка at-most-once, без ожидания подтверждения.
func (p *NATSPublisher) NotifyInterest(_ context.Context, evt service.InterestEvent) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	start := time.Now()
	err = p.nc.Publish(p.Subject(evt.LineID), b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

// Subject собирает subject из префикса и ID линии.
func Subject(prefix string, lineID uint) string {
	prefix = subjectToken(prefix)
	return fmt.Sprintf("%s.%d", prefix, lineID)
}

func subjectToken(s string) string {
	s = strings.Trim(strings.TrimSpace(s), ".")
	// Токены subject не могут содержать пробелы, '>' и '*'.
	repl := strings.NewReplacer(" ", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}

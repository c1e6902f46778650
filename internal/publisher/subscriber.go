package publisher

import (
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"

	"breadcrumb-analytics/internal/ingest"
)

// NATSSubscriber receives breadcrumb records published by the collector and
// hands them to a handler one at a time.
type NATSSubscriber struct {
	nc  *nats.Conn
	sub *nats.Subscription
}

// NewNATSSubscriber connects and subscribes to every vehicle subject below
// SubjectPrefix. Messages that fail to decode are dropped with a warning.
func NewNATSSubscriber(url string, m PublisherMetrics, handler func(ingest.Record)) (*NATSSubscriber, error) {
	nc, err := connect(url, "breadcrumb-subscriber", m)
	if err != nil {
		return nil, err
	}
	sub, err := nc.Subscribe(SubjectPrefix+".>", func(msg *nats.Msg) {
		var rec ingest.Record
		if err := json.Unmarshal(msg.Data, &rec); err != nil {
			log.Printf("drop undecodable message on %s: %v", msg.Subject, err)
			return
		}
		handler(rec)
	})
	if err != nil {
		nc.Close()
		return nil, err
	}
	return &NATSSubscriber{nc: nc, sub: sub}, nil
}

func (s *NATSSubscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Drain()
		s.nc.Close()
	}
}

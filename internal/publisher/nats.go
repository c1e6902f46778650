package publisher

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"breadcrumb-analytics/internal/ingest"
)

// SubjectPrefix roots every breadcrumb subject; one token per vehicle below it.
const SubjectPrefix = "breadcrumbs"

type NATSPublisher struct {
	nc          *nats.Conn
	logSubjects bool
	metrics     PublisherMetrics
}

type PublisherMetrics interface {
	PublishedInc()
	PublishErrInc()
	PublishObserve(d time.Duration)
	SetConnected(connected bool)
}

func NewNATSPublisher(url string, logSubjects bool, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := connect(url, "breadcrumb-collector", m)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{nc: nc, logSubjects: logSubjects, metrics: m}, nil
}

func connect(url, name string, m PublisherMetrics) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.SetConnected(false)
			}
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.SetConnected(true)
			}
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.SetConnected(false)
			}
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.SetConnected(true)
	}
	return nc, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

// PublishRecord publishes one raw breadcrumb record on its vehicle's subject.
func (p *NATSPublisher) PublishRecord(rec ingest.Record) error {
	subject := fmt.Sprintf("%s.%s", SubjectPrefix, subjectToken(fmt.Sprintf("%d", rec.VehicleID)))
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if p.logSubjects {
		log.Printf("nats publish subject=%s", subject)
	}
	start := time.Now()
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.PublishErrInc()
		} else {
			p.metrics.PublishedInc()
		}
	}
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}

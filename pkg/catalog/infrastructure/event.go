package infrastructure

import (
	log "github.com/sirupsen/logrus"

	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/service"
)

var _ service.EventDispatcher = &EventLogger{}

// EventLogger is the event sink for a single-process deployment: domain
// events end up in the structured log instead of a broker.
type EventLogger struct{}

func NewEventLogger() *EventLogger {
	return &EventLogger{}
}

func (d *EventLogger) Dispatch(event service.Event) error {
	log.WithFields(log.Fields{
		"event":   event.Type(),
		"payload": event,
	}).Info("domain event")
	return nil
}

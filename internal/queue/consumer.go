package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// StartPurchaseConsumer connects to RabbitMQ, declares the purchase queue
// (durable), and appends every event to the purchase log at logPath, one
// line per sale. It reconnects with exponential backoff until ctx is
// cancelled, which is the only way it returns. Malformed messages are
// rejected without requeue so one bad payload cannot stall the queue; a
// message that fails on the file system is requeued and the consumer
// reconnects after a pause.
func StartPurchaseConsumer(ctx context.Context, url, queueName, logPath string) error {
	log := logrus.WithField("component", "purchase-consumer")
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.WithError(err).Warnf("failed to dial broker, retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, queueName, logPath, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithError(err).Warn("consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queueName, logPath string, log *logrus.Entry) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.WithError(err).Warn("set QoS failed")
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := AppendPurchase(logPath, d.Body); err != nil {
				entry := log.WithError(err).WithField("message_id", d.MessageId)
				if errors.Is(err, ErrMalformedEvent) {
					entry.Error("dropping malformed purchase event")
					_ = d.Nack(false, false)
					continue
				}
				// the sale is committed; keep its event and back off
				entry.Error("could not record purchase event, requeueing")
				_ = d.Nack(false, true)
				return fmt.Errorf("append purchase: %w", err)
			}
			_ = d.Ack(false)
		}
	}
}

// ErrMalformedEvent marks payloads that can never be recorded, no matter
// how often they are redelivered.
var ErrMalformedEvent = errors.New("malformed purchase event")

// AppendPurchase decodes one PurchaseCompletedEvent and appends it to the
// log file at path, creating parent directories as needed.  Payload
// problems wrap ErrMalformedEvent; file system errors do not.
func AppendPurchase(path string, body []byte) error {
	var ev PurchaseCompletedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if ev.ReservationCode == 0 {
		return fmt.Errorf("%w: no reservation code", ErrMalformedEvent)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatPurchase(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatPurchase(ev PurchaseCompletedEvent) string {
	seats := make([]string, 0, len(ev.Tickets))
	for _, t := range ev.Tickets {
		seats = append(seats, fmt.Sprintf("%s:%s(%s)", t.Seat, t.Passenger, t.Class))
	}
	return fmt.Sprintf("[%s] Purchase completed | codigo_reserva=%d | voo=%d | nif=%s | balcao=%q | total=%s | seats=[%s]\n",
		ev.CompletedAt, ev.ReservationCode, ev.FlightID, ev.TaxID, ev.Counter, ev.Total, strings.Join(seats, ","))
}

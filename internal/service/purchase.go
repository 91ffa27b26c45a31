// Package service implements the ticket purchase workflow on top of the
// repository layer.
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/bdist/aviacao-service/internal/database"
	"github.com/bdist/aviacao-service/internal/logging"
	"github.com/bdist/aviacao-service/internal/metrics"
	"github.com/bdist/aviacao-service/internal/model"
	"github.com/bdist/aviacao-service/internal/queue"
	"github.com/bdist/aviacao-service/internal/repository"
)

// Prices maps a seat class to its fixed ticket price.
type Prices struct {
	FirstClass decimal.Decimal
	Economy    decimal.Decimal
}

// For returns the price of a ticket of the given class.
func (p Prices) For(firstClass bool) decimal.Decimal {
	if firstClass {
		return p.FirstClass
	}
	return p.Economy
}

// PurchasePublisher receives committed purchases.  Publishing is best
// effort and never affects the outcome returned to the buyer.
type PurchasePublisher interface {
	PublishPurchaseCompleted(ctx context.Context, ev queue.PurchaseCompletedEvent) error
}

// Purchase states, logged as the workflow advances.  Only committed and
// rolled_back are ever visible outside the transaction.
const (
	stateStarted        = "started"
	stateFlightResolved = "flight_resolved"
	stateSaleCreated    = "sale_created"
	stateAllocating     = "allocating"
	stateCommitted      = "committed"
	stateRolledBack     = "rolled_back"
)

const publishTimeout = 3 * time.Second

// PurchaseService sells tickets.  It holds no state between calls; the
// database is the only source of truth.
type PurchaseService struct {
	db        *sqlx.DB
	flights   *repository.FlightRepo
	seats     *repository.SeatRepo
	sales     *repository.SaleRepo
	prices    Prices
	publisher PurchasePublisher
}

// NewPurchaseService wires the purchase workflow.  publisher may be nil,
// in which case no events are emitted.
func NewPurchaseService(flights *repository.FlightRepo, seats *repository.SeatRepo, sales *repository.SaleRepo, prices Prices, publisher PurchasePublisher) *PurchaseService {
	if flights == nil || seats == nil || sales == nil {
		panic("nil repository passed to NewPurchaseService")
	}
	return &PurchaseService{
		db:        flights.DB(),
		flights:   flights,
		seats:     seats,
		sales:     sales,
		prices:    prices,
		publisher: publisher,
	}
}

// PurchaseTickets sells one ticket per passenger on a flight as a single
// atomic unit.
//
// The flight row is locked first (SELECT ... FOR UPDATE), so concurrent
// purchases for the same flight run one after the other while purchases
// for different flights do not contend.  Under READ COMMITTED every later
// statement of the transaction sees the tickets committed by whoever held
// the lock before, plus the tickets this transaction has already inserted;
// together with the lock this guarantees a seat is never sold twice.
//
// Errors: ErrFlightNotFound when the flight does not exist (nothing is
// written), *SeatsExhaustedError when a passenger's class is sold out
// (everything is rolled back), anything else is a storage failure.
func (s *PurchaseService) PurchaseTickets(ctx context.Context, flightID int64, taxID string, passengers []model.Passenger) (*model.Purchase, error) {
	start := time.Now()
	log := logging.FromContext(ctx).WithFields(logrus.Fields{
		"flight_id":  flightID,
		"passengers": len(passengers),
	})
	log.WithField("state", stateStarted).Debug("purchase")

	var purchase *model.Purchase
	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	err := database.WithTx(ctx, s.db, opts, func(tx *sqlx.Tx) error {
		flight, err := s.flights.LockForPurchaseTx(ctx, tx, flightID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrFlightNotFound
			}
			return err
		}
		log.WithFields(logrus.Fields{"state": stateFlightResolved, "aircraft": flight.Aircraft}).Debug("purchase")

		sale := model.Sale{TaxID: taxID, Counter: flight.Departure}
		if err := s.sales.CreateTx(ctx, tx, &sale); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"state": stateSaleCreated, "reservation_code": sale.ReservationCode}).Debug("purchase")

		tickets := make([]model.Ticket, 0, len(passengers))
		for i, p := range passengers {
			log.WithFields(logrus.Fields{"state": stateAllocating, "index": i, "class": model.ClassName(p.FirstClass)}).Debug("purchase")

			seat, err := s.seats.NextFreeTx(ctx, tx, *flight, p.FirstClass)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return &SeatsExhaustedError{FirstClass: p.FirstClass}
				}
				return err
			}
			t := model.Ticket{
				ReservationCode: sale.ReservationCode,
				PassengerName:   p.Name,
				FirstClass:      p.FirstClass,
				FlightID:        flight.ID,
				Aircraft:        flight.Aircraft,
				Seat:            seat,
				Price:           s.prices.For(p.FirstClass),
			}
			if err := s.sales.CreateTicketTx(ctx, tx, t); err != nil {
				if repository.IsUniqueViolation(err) {
					log.WithError(err).WithField("seat", seat).Error("seat already ticketed on this flight")
				}
				return err
			}
			tickets = append(tickets, t)
		}

		purchase = &model.Purchase{
			ReservationCode: sale.ReservationCode,
			FlightID:        flight.ID,
			TaxID:           taxID,
			Counter:         flight.Departure,
			Passengers:      passengers,
			Tickets:         tickets,
		}
		return nil
	})
	if err != nil {
		metrics.ObservePurchase(outcomeOf(err), time.Since(start))
		log.WithError(err).WithField("state", stateRolledBack).Debug("purchase")
		return nil, err
	}

	metrics.ObservePurchase(metrics.OutcomeCommitted, time.Since(start))
	countIssued(purchase.Tickets)
	log.WithFields(logrus.Fields{
		"state":            stateCommitted,
		"reservation_code": purchase.ReservationCode,
	}).Info("purchase committed")

	s.publish(ctx, log, purchase)
	return purchase, nil
}

func (s *PurchaseService) publish(ctx context.Context, log *logrus.Entry, p *model.Purchase) {
	if s.publisher == nil {
		return
	}
	// the request may be cancelled right after the response is written;
	// the event still belongs to a committed sale
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishPurchaseCompleted(ctx, completedEvent(p)); err != nil {
		log.WithError(err).WithField("reservation_code", p.ReservationCode).Warn("could not publish purchase event")
	}
}

func completedEvent(p *model.Purchase) queue.PurchaseCompletedEvent {
	total := decimal.Zero
	lines := make([]queue.TicketLine, 0, len(p.Tickets))
	for _, t := range p.Tickets {
		total = total.Add(t.Price)
		lines = append(lines, queue.TicketLine{
			Passenger: t.PassengerName,
			Class:     model.ClassName(t.FirstClass),
			Seat:      t.Seat,
			Price:     t.Price.String(),
		})
	}
	return queue.PurchaseCompletedEvent{
		ReservationCode: p.ReservationCode,
		FlightID:        p.FlightID,
		TaxID:           p.TaxID,
		Counter:         p.Counter,
		Tickets:         lines,
		Total:           total.String(),
		CompletedAt:     time.Now().UTC().Format(time.RFC3339),
	}
}

func countIssued(tickets []model.Ticket) {
	first := 0
	for _, t := range tickets {
		if t.FirstClass {
			first++
		}
	}
	metrics.TicketsIssued(model.ClassName(true), first)
	metrics.TicketsIssued(model.ClassName(false), len(tickets)-first)
}

func outcomeOf(err error) string {
	var exhausted *SeatsExhaustedError
	switch {
	case errors.Is(err, ErrFlightNotFound):
		return metrics.OutcomeFlightNotFound
	case errors.As(err, &exhausted):
		return metrics.OutcomeSeatsExhausted
	default:
		return metrics.OutcomeError
	}
}

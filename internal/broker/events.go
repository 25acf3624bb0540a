package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/infra"

	"github.com/google/uuid"
)

const (
	EventMovimientoRegistrado = "movimiento.registrado"
	EventStockBajo            = "stock.bajo"
)

type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

func newBase(eventType string) BaseEvent {
	return BaseEvent{EventID: uuid.NewString(), EventType: eventType, Timestamp: time.Now().UTC()}
}

type MovimientoRegistradoEvent struct {
	BaseEvent
	IDMovimiento int64  `json:"idmovimiento"`
	IDVariante   int64  `json:"idvariante"`
	Tipo         string `json:"tipo"`
	Cantidad     int    `json:"cantidad"`
}

type StockBajoEvent struct {
	BaseEvent
	IDVariante  int64  `json:"idvariante"`
	Producto    string `json:"producto"`
	StockActual int    `json:"stock_actual"`
	StockMinimo int    `json:"stock_minimo"`
}

// EventPublisher publishes stock domain events through a circuit breaker.
// A nil *EventPublisher is valid and drops every event, which is how the
// service runs without KAFKA_BROKERS.
type EventPublisher struct {
	producer *Producer
	breaker  *infra.CircuitBreaker
}

func NewEventPublisher(producer *Producer, breaker *infra.CircuitBreaker) *EventPublisher {
	return &EventPublisher{producer: producer, breaker: breaker}
}

func (ep *EventPublisher) MovimientoRegistrado(ctx context.Context, idMovimiento, idVariante int64, tipo string, cantidad int) error {
	return ep.publish(ctx, idVariante, MovimientoRegistradoEvent{
		BaseEvent:    newBase(EventMovimientoRegistrado),
		IDMovimiento: idMovimiento,
		IDVariante:   idVariante,
		Tipo:         tipo,
		Cantidad:     cantidad,
	})
}

func (ep *EventPublisher) StockBajo(ctx context.Context, idVariante int64, producto string, stock, minimo int) error {
	return ep.publish(ctx, idVariante, StockBajoEvent{
		BaseEvent:   newBase(EventStockBajo),
		IDVariante:  idVariante,
		Producto:    producto,
		StockActual: stock,
		StockMinimo: minimo,
	})
}

func (ep *EventPublisher) publish(ctx context.Context, idVariante int64, event interface{ eventType() string }) error {
	if ep == nil || ep.producer == nil {
		return nil
	}
	key := fmt.Sprintf("variante-%d", idVariante)
	send := func() error { return ep.producer.Publish(ctx, key, event) }
	var err error
	if ep.breaker != nil {
		err = ep.breaker.Execute(send)
	} else {
		err = send()
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	infra.EventosPublicadosTotal.WithLabelValues(event.eventType(), result).Inc()
	return err
}

func (e BaseEvent) eventType() string { return e.EventType }

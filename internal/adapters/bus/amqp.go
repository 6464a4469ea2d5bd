// Package bus provides broadcast-bus adapters. The core publishes
// connection events through core.EventBus so sibling server instances can
// observe them; it never reads the bus back synchronously.
package bus

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"

	"github.com/vkotov/roulette/internal/core"
)

// AMQPBus publishes events to a fanout exchange. Publishing from the core
// only enqueues onto an in-process buffer; a background goroutine does the
// broker I/O, so no caller ever blocks on the network while holding the
// matchmaking serialization point.
type AMQPBus struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string

	events chan core.BusEvent
	done   chan struct{}
}

func NewAMQPBus(url, exchange string) (*AMQPBus, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", false, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	b := &AMQPBus{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		events:   make(chan core.BusEvent, 256),
		done:     make(chan struct{}),
	}
	go b.loop()
	return b, nil
}

func (b *AMQPBus) loop() {
	for {
		select {
		case <-b.done:
			return
		case e := <-b.events:
			body, err := json.Marshal(e)
			if err != nil {
				log.Error().Err(err).Str("module", "bus.amqp").Msg("event marshal")
				continue
			}
			err = b.channel.Publish(b.exchange, "", false, false, amqp.Publishing{
				ContentType: "application/json",
				Body:        body,
			})
			if err != nil {
				log.Warn().Err(err).Str("module", "bus.amqp").Str("kind", e.Kind).Msg("publish failed")
			}
		}
	}
}

// Publish enqueues the event; a full buffer drops it. Bus delivery is
// best-effort by contract.
func (b *AMQPBus) Publish(e core.BusEvent) {
	select {
	case b.events <- e:
	default:
		log.Warn().Str("module", "bus.amqp").Str("kind", e.Kind).Msg("bus buffer full, event dropped")
	}
}

func (b *AMQPBus) Close() {
	close(b.done)
	_ = b.channel.Close()
	_ = b.conn.Close()
}

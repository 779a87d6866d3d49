package queue

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/growthkit/leadflow/internal/entity"
)

// HandoffReceiver is the outreach side of the one-way handoff.
type HandoffReceiver interface {
	ReceiveHandoff(payload entity.HandoffPayload) error
}

// Worker consumes handoff payloads and transfers lead ownership to the
// outreach workflow. Capture itself stays user-gated; the worker only
// delivers the payload.
type Worker struct {
	Channel  *amqp.Channel
	Receiver HandoffReceiver
}

func NewWorker(ch *amqp.Channel, receiver HandoffReceiver) *Worker {
	return &Worker{
		Channel:  ch,
		Receiver: receiver,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("register RabbitMQ consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload entity.HandoffPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("[WORKER] malformed handoff payload: %s", err)
				// Poison message, reject without requeue so the DLQ gets it.
				d.Nack(false, false)
				continue
			}

			log.Printf("[WORKER] handoff %s received with %d leads", payload.ID, len(payload.Leads))

			if err := w.Receiver.ReceiveHandoff(payload); err != nil {
				log.Printf("[WORKER] handoff %s rejected: %s", payload.ID, err)
				d.Nack(false, false)
				continue
			}

			d.Ack(false)
		}
	}()

	log.Printf(" [*] handoff worker waiting on queue '%s'", queueName)
	<-forever
}

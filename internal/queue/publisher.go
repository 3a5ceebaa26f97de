package queue

import (
    "context"
    "encoding/json"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/movie-ticket-booking/internal/model"
)

// Publisher sends booking events to RabbitMQ.  Each publish dials, declares
// the queue and closes again, so a broker outage never holds resources
// between requests.  Errors are logged and returned; callers treat them as
// best effort.
type Publisher struct {
    url string
    log logrus.FieldLogger
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string, log logrus.FieldLogger) *Publisher {
    if log == nil {
        log = logrus.StandardLogger()
    }
    return &Publisher{url: url, log: log.WithField("component", "booking-publisher")}
}

// PublishBookingConfirmed publishes b to the booking.confirmed queue as a
// persistent JSON message with a fresh message id.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, b *model.Booking) error {
    logger := p.log.WithField("booking_id", b.ID)

    conn, err := amqp.DialConfig(p.url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(dialTimeout(ctx)),
    })
    if err != nil {
        logger.WithError(err).Warn("rabbitmq: dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        logger.WithError(err).Warn("rabbitmq: channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    if err := declareBookingQueue(ch); err != nil {
        logger.WithError(err).Warn("rabbitmq: queue declare failed")
        return err
    }

    body, err := json.Marshal(NewBookingConfirmedEvent(b))
    if err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    uuid.NewString(),
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", BookingQueueName, false, false, pub); err != nil {
        logger.WithError(err).Warn("rabbitmq: publish failed")
        return err
    }
    logger.WithField("message_id", pub.MessageId).Debug("booking event published")
    return nil
}

// dialTimeout bounds the broker dial by ctx's deadline instead of the
// client's 30s default.
func dialTimeout(ctx context.Context) time.Duration {
    const fallback = 5 * time.Second
    deadline, ok := ctx.Deadline()
    if !ok {
        return fallback
    }
    if d := time.Until(deadline); d > 0 {
        return d
    }
    return time.Millisecond
}

// declareBookingQueue is idempotent; the queue is durable so messages
// survive broker restarts.
func declareBookingQueue(ch *amqp.Channel) error {
    _, err := ch.QueueDeclare(
        BookingQueueName, // name
        true,             // durable
        false,            // autoDelete
        false,            // exclusive
        false,            // noWait
        nil,              // args
    )
    return err
}

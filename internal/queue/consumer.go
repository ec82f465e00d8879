package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// TemplateStats is the slice of the template repository the consumer needs
// to fold generation outcomes into template aggregates.
type TemplateStats interface {
	RecordUsage(ctx context.Context, templateID uint64, success bool) error
}

// StartDivinationConsumer connects to RabbitMQ, declares the
// divination.completed queue (durable), and starts consuming messages. Each
// event updates the originating template's usage statistics and is appended
// to logs/divination.log in a single-line, human-friendly format. The
// function runs a reconnect loop with capped backoff and keeps running
// until the process exits; processing errors are logged and the offending
// message rejected so the server continues operating.
func StartDivinationConsumer(stats TemplateStats) error {
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("divination-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, stats); err != nil {
			log.Printf("divination-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, stats TemplateStats) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("divination-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(divinationQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(divinationQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, stats); err != nil {
			log.Printf("divination-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, stats TemplateStats) error {
	var ev DivinationCompletedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	// The builtin fallback template has no id; there is nothing to update.
	if ev.TemplateID != nil && stats != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := stats.RecordUsage(ctx, *ev.TemplateID, ev.Success); err != nil {
			cancel()
			return fmt.Errorf("record template usage: %w", err)
		}
		cancel()
	}

	return appendAuditLine(ev)
}

func appendAuditLine(ev DivinationCompletedEvent) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "divination.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	actor := "anonymous"
	if ev.UserID != nil {
		actor = fmt.Sprintf("user=%d", *ev.UserID)
	} else if ev.SessionID != nil {
		actor = "session=" + *ev.SessionID
	}
	tmpl := "builtin"
	if ev.TemplateID != nil {
		tmpl = fmt.Sprintf("%d", *ev.TemplateID)
	}

	line := fmt.Sprintf("[%s] Divination completed | id=%d | %s | type=%s | lang=%s | model=%s | template=%s | success=%t | tokens=%d | elapsed=%dms\n",
		ev.CreatedAt, ev.DivinationID, actor, ev.DivinationType, ev.Language, ev.Model, tmpl, ev.Success, ev.TokenCount, ev.ResponseTimeMs)

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

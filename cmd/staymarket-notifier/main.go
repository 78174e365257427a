package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"staymarket/internal/infra/broker/kafka"
	"staymarket/internal/infra/config"
	"staymarket/internal/infra/obs"
)

// The notifier tails the marketplace event topics and turns booking and
// payout events into notification log lines. It is the delivery skeleton:
// swapping the sink for email or push only touches handleEvent.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	if len(cfg.KafkaBrokers) == 0 {
		logger.Error("KAFKA_BROKERS is required for the notifier")
		os.Exit(1)
	}

	groupID := getenv("NOTIFIER_GROUP_ID", "staymarket-notifier")
	consumer, err := kafka.NewGroupConsumer(cfg.KafkaBrokers, groupID, func(ctx context.Context, msg kafka.Message) error {
		return handleEvent(logger, msg)
	}, logger)
	if err != nil {
		logger.Error("consumer init failed", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	topics := []string{
		cfg.KafkaTopicPrefix + "booking.events.v1",
		cfg.KafkaTopicPrefix + "payout.events.v1",
	}
	logger.Info("notifier starting", "group", groupID, "topics", topics)
	if err := consumer.Run(ctx, topics...); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("notifier stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("notifier stopped")
}

type moneyAmount struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// envelope mirrors the CloudEvents JSON the outbox dispatcher emits.
type envelope struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Source string          `json:"source"`
	Time   time.Time       `json:"time"`
	Data   json.RawMessage `json:"data"`
}

func handleEvent(logger *slog.Logger, msg kafka.Message) error {
	var evt envelope
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	switch evt.Type {
	case "booking.requested.v1":
		var data struct {
			BookingID  string      `json:"booking_id"`
			PropertyID string      `json:"property_id"`
			GuestID    string      `json:"guest_id"`
			Total      moneyAmount `json:"total"`
		}
		if err := json.Unmarshal(evt.Data, &data); err != nil {
			return fmt.Errorf("decode booking.requested: %w", err)
		}
		logger.Info("notify: booking requested",
			"booking_id", data.BookingID, "property_id", data.PropertyID,
			"guest_id", data.GuestID, "total_cents", data.Total.Amount, "currency", data.Total.Currency)
	case "booking.status_changed.v1":
		var data struct {
			BookingID string `json:"booking_id"`
			Previous  string `json:"previous"`
			Current   string `json:"current"`
		}
		if err := json.Unmarshal(evt.Data, &data); err != nil {
			return fmt.Errorf("decode booking.status_changed: %w", err)
		}
		logger.Info("notify: booking status changed",
			"booking_id", data.BookingID, "from", data.Previous, "to", data.Current)
	case "booking.removed.v1":
		var data struct {
			BookingID string `json:"booking_id"`
		}
		if err := json.Unmarshal(evt.Data, &data); err != nil {
			return fmt.Errorf("decode booking.removed: %w", err)
		}
		logger.Info("notify: booking removed", "booking_id", data.BookingID)
	case "payout.requested.v1":
		var data struct {
			PayoutID  string      `json:"payout_id"`
			HostID    string      `json:"host_id"`
			Reference string      `json:"reference"`
			Amount    moneyAmount `json:"amount"`
		}
		if err := json.Unmarshal(evt.Data, &data); err != nil {
			return fmt.Errorf("decode payout.requested: %w", err)
		}
		logger.Info("notify: payout requested",
			"payout_id", data.PayoutID, "host_id", data.HostID,
			"reference", data.Reference, "amount_cents", data.Amount.Amount, "currency", data.Amount.Currency)
	default:
		logger.Debug("unhandled event type", "type", evt.Type, "topic", msg.Topic)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

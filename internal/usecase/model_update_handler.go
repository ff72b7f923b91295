package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	applogger "Coinsight/pkg/logger"
)

// ModelUpdateEvent announces that a symbol's checkpoint files changed on
// disk, typically after a training run completes.
type ModelUpdateEvent struct {
	Symbol       string `json:"symbol"`
	Event        string `json:"event"` // model_trained / model_removed
	ModelVersion string `json:"model_version,omitempty"`
}

// ModelUpdateHandler consumes model-update events and invalidates the
// affected symbol's handles and cached responses.
type ModelUpdateHandler struct {
	topic     string
	predictor *Predictor
	l         *applogger.Logger
}

func NewModelUpdateHandler(topic string, predictor *Predictor, l *applogger.Logger) *ModelUpdateHandler {
	return &ModelUpdateHandler{topic: topic, predictor: predictor, l: l}
}

// Topic returns the Kafka topic this handler consumes.
func (h *ModelUpdateHandler) Topic() string { return h.topic }

// Handle processes one model-update event.
func (h *ModelUpdateHandler) Handle(ctx context.Context, data []byte) error {
	var ev ModelUpdateEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode model update: %w", err)
	}
	if ev.Symbol == "" {
		return fmt.Errorf("model update without symbol")
	}

	h.l.Info("model update received",
		applogger.String("symbol", ev.Symbol),
		applogger.String("event", ev.Event),
		applogger.String("version", ev.ModelVersion),
	)
	return h.predictor.Invalidate(ctx, ev.Symbol)
}

package fiscal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// DocumentEmitter is the external fiscal-document collaborator. Document
// construction (XML, signing, transmission) lives outside this system.
type DocumentEmitter interface {
	Emit(ctx context.Context, bookingID uuid.UUID) error
}

type Handler struct {
	emitter DocumentEmitter
	log     *slog.Logger
}

func NewHandler(emitter DocumentEmitter, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		emitter: emitter,
		log:     log.With(slog.String("component", "fiscal.handler")),
	}
}

func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload issuePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("fiscal: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	bookingID, err := uuid.Parse(payload.BookingID)
	if err != nil {
		return fmt.Errorf("fiscal: invalid booking_id %q: %w", payload.BookingID, asynq.SkipRetry)
	}

	if err := h.emitter.Emit(ctx, bookingID); err != nil {
		h.log.Warn("fiscal document emit failed", slog.String("booking_id", bookingID.String()), slog.Any("err", err))
		return err
	}

	h.log.Info("fiscal document issued", slog.String("booking_id", bookingID.String()))
	return nil
}

func NewServeMux(h *Handler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TaskIssueDocument, h)
	return mux
}

// HTTPEmitter posts issuance requests to the external emitter endpoint.
type HTTPEmitter struct {
	url    string
	client *http.Client
}

func NewHTTPEmitter(url string, client *http.Client) *HTTPEmitter {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPEmitter{url: url, client: client}
}

func (e *HTTPEmitter) Emit(ctx context.Context, bookingID uuid.UUID) error {
	body, err := json.Marshal(issuePayload{BookingID: bookingID.String()})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("fiscal: emitter returned %s", resp.Status)
	}
	return nil
}

// LogEmitter is the fallback when no emitter endpoint is configured.
type LogEmitter struct {
	log *slog.Logger
}

func NewLogEmitter(log *slog.Logger) *LogEmitter {
	if log == nil {
		log = slog.Default()
	}
	return &LogEmitter{log: log}
}

func (e *LogEmitter) Emit(ctx context.Context, bookingID uuid.UUID) error {
	e.log.Info("fiscal emitter not configured; dropping document request", slog.String("booking_id", bookingID.String()))
	return nil
}

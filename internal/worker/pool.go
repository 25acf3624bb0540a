package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/infra"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueStock = "jobs:stock"

	JobVerificarStock = "verificar_stock"
	JobAlertaEmail    = "alerta_email"

	// MaxJobAttempts is how many times a job runs before it goes to the DLQ.
	MaxJobAttempts = 3

	alertaDedupPrefix = "alerta:stock:"
	alertaDedupTTL    = time.Hour
)

// Job is the generic envelope for all async tasks.
type Job struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	Requeues   int             `json:"requeues,omitempty"`
}

// Handler processes one job payload. Returning an error retries the job;
// wrap it with Permanent to send it straight to the DLQ.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

type HandlerFunc func(ctx context.Context, raw json.RawMessage) error

func (f HandlerFunc) Process(ctx context.Context, raw json.RawMessage) error { return f(ctx, raw) }

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueVerificarStock schedules a low-stock check for one variant.
func (d *Dispatcher) EnqueueVerificarStock(ctx context.Context, idVariante int64) error {
	return d.enqueue(ctx, QueueStock, JobVerificarStock, VerificarStockPayload{IDVariante: idVariante})
}

// EnqueueAlertaEmail schedules an alert mail, at most one per variant per
// hour. A suppressed duplicate is not an error.
func (d *Dispatcher) EnqueueAlertaEmail(ctx context.Context, payload AlertaEmailPayload) error {
	key := alertaDedupPrefix + strconv.FormatInt(payload.IDVariante, 10)
	fresh, err := d.rdb.SetNX(ctx, key, time.Now().Unix(), alertaDedupTTL).Result()
	if err != nil {
		return fmt.Errorf("dedup alerta: %w", err)
	}
	if !fresh {
		log.Debug().Int64("idvariante", payload.IDVariante).Msg("alerta ya enviada recientemente")
		return nil
	}
	if err := d.enqueue(ctx, QueueStock, JobAlertaEmail, payload); err != nil {
		// release the key so the retry of this job can enqueue the mail
		if delErr := d.rdb.Del(context.WithoutCancel(ctx), key).Err(); delErr != nil {
			log.Error().Err(delErr).Str("key", key).Msg("no se pudo liberar dedup de alerta")
		}
		return err
	}
	return nil
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return pushJob(ctx, d.rdb, queue, Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Payload:    data,
		EnqueuedAt: time.Now().UTC(),
	})
}

func pushJob(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming QueueStock.
// Each goroutine blocks on BRPOP, so idle workers cost no CPU. The returned
// WaitGroup is done once every worker has seen ctx cancelled.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers map[string]Handler, numWorkers int) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, rdb, handlers, id)
		}(i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
	return &wg
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers map[string]Handler, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop; waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueStock).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("brpop failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers map[string]Handler, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		quoted, _ := json.Marshal(raw)
		SendToDLQ(ctx, rdb, queue, Job{Type: "unknown", Payload: quoted}, "invalid envelope: "+err.Error(), 0)
		return
	}

	h, ok := handlers[job.Type]
	if !ok {
		infra.JobsProcesadosTotal.WithLabelValues(job.Type, "unknown").Inc()
		SendToDLQ(ctx, rdb, queue, job, "no handler for job type", 0)
		return
	}

	attempts, err := runHandler(ctx, h, job)
	if err != nil {
		infra.JobsProcesadosTotal.WithLabelValues(job.Type, "dlq").Inc()
		SendToDLQ(ctx, rdb, queue, job, err.Error(), attempts)
		return
	}
	infra.JobsProcesadosTotal.WithLabelValues(job.Type, "ok").Inc()
	log.Debug().Str("type", job.Type).Str("job_id", job.ID).Int("attempts", attempts).Msg("job processed")
}

// runHandler applies the retry policy to one job and reports how many
// attempts were made.
func runHandler(ctx context.Context, h Handler, job Job) (int, error) {
	attempts := 0
	err := withRetry(ctx, MaxJobAttempts, func(attempt int) error {
		attempts = attempt + 1
		err := h.Process(ctx, job.Payload)
		if err != nil && !IsPermanent(err) {
			log.Warn().Err(err).Str("type", job.Type).Str("job_id", job.ID).Int("attempt", attempts).Msg("job failed, retrying")
		}
		return err
	})
	return attempts, err
}

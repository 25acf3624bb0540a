package worker

// Background goroutine that periodically moves DLQ entries back onto their
// queue. Gated by the broker circuit breaker: while the broker is down the
// jobs would only fail again.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	requeueTickInterval = time.Minute
	requeueBatchSize    = 10
	// MaxRequeues caps how often one job may come back from the DLQ.
	MaxRequeues = 3
)

// RequeueCronConfig holds all dependencies for the requeue goroutine.
type RequeueCronConfig struct {
	RDB      *redis.Client
	CB       *infra.CircuitBreaker // nil when no broker is configured
	Queue    string
	Interval time.Duration
}

// StartRequeueCron launches the requeue loop. It respects ctx for shutdown.
func StartRequeueCron(ctx context.Context, cfg RequeueCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = requeueTickInterval
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Str("queue", cfg.Queue).Msg("requeue_cron: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("requeue_cron: shutting down")
				return
			case <-ticker.C:
				if _, err := RequeueDLQ(ctx, cfg); err != nil {
					log.Error().Err(err).Msg("requeue_cron: tick failed")
				}
			}
		}
	}()
}

// RequeueDLQ moves up to requeueBatchSize entries from the DLQ back to the
// queue. Entries past MaxRequeues, or whose job type is unknown, stay in the
// DLQ for manual inspection. Returns how many jobs were requeued.
func RequeueDLQ(ctx context.Context, cfg RequeueCronConfig) (int, error) {
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("requeue_cron: circuit breaker is open, skipping tick")
		return 0, nil
	}

	dlqKey := DLQPrefix + cfg.Queue
	pending, err := cfg.RDB.LLen(ctx, dlqKey).Result()
	if err != nil {
		return 0, err
	}
	if pending > requeueBatchSize {
		pending = requeueBatchSize
	}

	requeued := 0
	var kept [][]byte
	for i := int64(0); i < pending; i++ {
		raw, err := cfg.RDB.RPop(ctx, dlqKey).Bytes()
		if err == redis.Nil {
			break
		}
		if err != nil {
			if restoreErr := restoreDLQ(ctx, cfg.RDB, dlqKey, kept); restoreErr != nil {
				log.Error().Err(restoreErr).Int("entries", len(kept)).Msg("requeue_cron: failed to restore kept entries")
			}
			return requeued, err
		}

		var entry DLQEntry
		if err := json.Unmarshal(raw, &entry); err != nil || !requeueable(entry) {
			kept = append(kept, raw)
			continue
		}

		job := Job{
			ID:         entry.JobID,
			Type:       entry.JobType,
			Payload:    entry.Payload,
			EnqueuedAt: time.Now().UTC(),
			Requeues:   entry.Requeues + 1,
		}
		if err := pushJob(ctx, cfg.RDB, cfg.Queue, job); err != nil {
			kept = append(kept, raw)
			log.Error().Err(err).Str("job_id", job.ID).Msg("requeue_cron: push failed")
			continue
		}
		requeued++
	}

	if err := restoreDLQ(ctx, cfg.RDB, dlqKey, kept); err != nil {
		return requeued, err
	}
	if requeued > 0 {
		log.Info().Int("count", requeued).Str("queue", cfg.Queue).Msg("requeue_cron: jobs requeued")
	}
	return requeued, nil
}

// restoreDLQ puts entries popped but not requeued back at the head of the
// DLQ; RPOP drains from the tail.
func restoreDLQ(ctx context.Context, rdb *redis.Client, dlqKey string, kept [][]byte) error {
	if len(kept) == 0 {
		return nil
	}
	args := make([]interface{}, len(kept))
	for i, k := range kept {
		args[i] = k
	}
	return rdb.LPush(context.WithoutCancel(ctx), dlqKey, args...).Err()
}

func requeueable(e DLQEntry) bool {
	if e.Requeues >= MaxRequeues {
		return false
	}
	return e.JobType == JobVerificarStock || e.JobType == JobAlertaEmail
}

package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bajoMinimoLedger(id int64) *stubLedger {
	return &stubLedger{rows: []dto.VarianteStockResponse{
		{IDVariante: id, Producto: "Ficus", StockActual: 1, StockMinimo: 2, BajoMinimo: true, Estado: true},
	}}
}

func TestEnqueueAlertaEmail_PushFallidoLiberaDedup(t *testing.T) {
	fr, rdb := newFakeRedis(t)
	fr.failLPush = 1
	d := NewDispatcher(rdb)
	ctx := context.Background()
	p := AlertaEmailPayload{IDVariante: 7, Producto: "Ficus"}

	require.Error(t, d.EnqueueAlertaEmail(ctx, p))
	assert.Empty(t, fr.list(QueueStock))

	require.NoError(t, d.EnqueueAlertaEmail(ctx, p))
	assert.Len(t, fr.list(QueueStock), 1)

	// Once queued, the dedup window applies.
	require.NoError(t, d.EnqueueAlertaEmail(ctx, p))
	assert.Len(t, fr.list(QueueStock), 1)
}

func TestStockAlertWorker_ReintentoEncolaMailTrasPushFallido(t *testing.T) {
	fr, rdb := newFakeRedis(t)
	fr.failLPush = 1
	pub := &recPublisher{}
	w := NewStockAlertWorker(bajoMinimoLedger(7), pub, NewDispatcher(rdb))

	attempts, err := runHandler(context.Background(), w, Job{
		ID: "j1", Type: JobVerificarStock, Payload: payload(t, VerificarStockPayload{IDVariante: 7}),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	queued := fr.list(QueueStock)
	require.Len(t, queued, 1)
	var job Job
	require.NoError(t, json.Unmarshal([]byte(queued[0]), &job))
	assert.Equal(t, JobAlertaEmail, job.Type)
	assert.Equal(t, []int64{7}, pub.ids, "stock.bajo published once")
}

func TestStockAlertWorker_ReintentoNoRepublicaEvento(t *testing.T) {
	pub := &recPublisher{}
	emails := &recEmails{fails: 1}
	w := NewStockAlertWorker(bajoMinimoLedger(7), pub, emails)

	attempts, err := runHandler(context.Background(), w, Job{
		ID: "j2", Type: JobVerificarStock, Payload: payload(t, VerificarStockPayload{IDVariante: 7}),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, []int64{7}, pub.ids)
	assert.Len(t, emails.payloads, 1)
}

func TestRequeueDLQ_FalloDeRPopConservaEntradas(t *testing.T) {
	fr, rdb := newFakeRedis(t)
	ctx := context.Background()

	SendToDLQ(ctx, rdb, QueueStock, Job{ID: "agotado", Type: JobVerificarStock, Payload: json.RawMessage(`{"idvariante":1}`), Requeues: MaxRequeues}, "boom", 3)
	SendToDLQ(ctx, rdb, QueueStock, Job{ID: "nuevo", Type: JobVerificarStock, Payload: json.RawMessage(`{"idvariante":2}`)}, "boom", 3)
	fr.failRPop = 2

	cfg := RequeueCronConfig{RDB: rdb, Queue: QueueStock}
	n, err := RequeueDLQ(ctx, cfg)
	require.ErrorIs(t, err, errRedisCaido)
	assert.Zero(t, n)
	assert.Len(t, fr.list(DLQPrefix+QueueStock), 2, "popped entry restored")

	n, err = RequeueDLQ(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	dlq := fr.list(DLQPrefix + QueueStock)
	require.Len(t, dlq, 1)
	var entry DLQEntry
	require.NoError(t, json.Unmarshal([]byte(dlq[0]), &entry))
	assert.Equal(t, "agotado", entry.JobID)
	assert.Len(t, fr.list(QueueStock), 1)
}

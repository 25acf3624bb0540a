package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func init() {
	retryBaseDelay = time.Millisecond
}

// ── Stubs ────────────────────────────────────────────────────────────────────

type stubLedger struct {
	rows    []dto.VarianteStockResponse
	err     error
	alertas []dto.VarianteStockResponse
}

func (l *stubLedger) ListarVariantesConStock(_ context.Context, ids []int64) ([]dto.VarianteStockResponse, error) {
	if l.err != nil {
		return nil, l.err
	}
	var out []dto.VarianteStockResponse
	for _, r := range l.rows {
		for _, id := range ids {
			if r.IDVariante == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (l *stubLedger) ObtenerAlertas(context.Context) ([]dto.VarianteStockResponse, error) {
	return l.alertas, nil
}

type recPublisher struct {
	ids []int64
	err error
}

func (p *recPublisher) StockBajo(_ context.Context, id int64, _ string, _, _ int) error {
	p.ids = append(p.ids, id)
	return p.err
}

type recEmails struct {
	payloads []AlertaEmailPayload
	fails    int
}

func (e *recEmails) EnqueueAlertaEmail(_ context.Context, p AlertaEmailPayload) error {
	if e.fails > 0 {
		e.fails--
		return errors.New("redis caido")
	}
	e.payloads = append(e.payloads, p)
	return nil
}

type recSender struct {
	subject string
	body    string
	adjunto []byte
	err     error
}

func (s *recSender) EnviarAlertaStock(subject, body string, adjunto []byte) error {
	s.subject, s.body, s.adjunto = subject, body, adjunto
	return s.err
}

func payload(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// ── StockAlertWorker ─────────────────────────────────────────────────────────

func TestStockAlertWorker_BajoMinimoPublicaYEncola(t *testing.T) {
	ledger := &stubLedger{rows: []dto.VarianteStockResponse{
		{IDVariante: 7, Producto: "Ficus", StockActual: 1, StockMinimo: 2, BajoMinimo: true, Estado: true},
	}}
	pub := &recPublisher{}
	emails := &recEmails{}
	w := NewStockAlertWorker(ledger, pub, emails)

	require.NoError(t, w.Process(context.Background(), payload(t, VerificarStockPayload{IDVariante: 7})))
	assert.Equal(t, []int64{7}, pub.ids)
	require.Len(t, emails.payloads, 1)
	assert.Equal(t, 1, emails.payloads[0].StockActual)
}

func TestStockAlertWorker_StockSuficienteNoAlerta(t *testing.T) {
	ledger := &stubLedger{rows: []dto.VarianteStockResponse{
		{IDVariante: 7, StockActual: 10, StockMinimo: 2, Estado: true},
	}}
	pub := &recPublisher{}
	w := NewStockAlertWorker(ledger, pub, nil)

	require.NoError(t, w.Process(context.Background(), payload(t, VerificarStockPayload{IDVariante: 7})))
	assert.Empty(t, pub.ids)
}

func TestStockAlertWorker_VarianteInexistente(t *testing.T) {
	w := NewStockAlertWorker(&stubLedger{}, nil, nil)
	assert.NoError(t, w.Process(context.Background(), payload(t, VerificarStockPayload{IDVariante: 99})))
}

func TestStockAlertWorker_PayloadInvalidoEsPermanente(t *testing.T) {
	w := NewStockAlertWorker(&stubLedger{}, nil, nil)

	err := w.Process(context.Background(), json.RawMessage(`{"idvariante":"x"}`))
	assert.True(t, IsPermanent(err))
	err = w.Process(context.Background(), payload(t, VerificarStockPayload{}))
	assert.True(t, IsPermanent(err))
}

func TestStockAlertWorker_ErrorDeLedgerSeReintenta(t *testing.T) {
	w := NewStockAlertWorker(&stubLedger{err: errors.New("db caida")}, nil, nil)

	err := w.Process(context.Background(), payload(t, VerificarStockPayload{IDVariante: 1}))
	require.Error(t, err)
	assert.False(t, IsPermanent(err))
}

// ── EmailWorker ──────────────────────────────────────────────────────────────

func TestEmailWorker_AdjuntaReporte(t *testing.T) {
	sku := "FIC-1"
	ledger := &stubLedger{alertas: []dto.VarianteStockResponse{
		{IDVariante: 7, Producto: "Ficus", SKU: &sku, StockActual: 1, StockMinimo: 2, BajoMinimo: true},
	}}
	sender := &recSender{}
	w := NewEmailWorker(sender, ledger)

	err := w.Process(context.Background(), payload(t, AlertaEmailPayload{IDVariante: 7, Producto: "Ficus", SKU: &sku, StockActual: 1, StockMinimo: 2}))
	require.NoError(t, err)
	assert.Equal(t, "Stock bajo: Ficus", sender.subject)
	assert.Contains(t, sender.body, "SKU: FIC-1")

	f, err := excelize.OpenReader(bytes.NewReader(sender.adjunto))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Stock")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestEmailWorker_FalloSMTPSeReintenta(t *testing.T) {
	w := NewEmailWorker(&recSender{err: errors.New("smtp")}, nil)
	err := w.Process(context.Background(), payload(t, AlertaEmailPayload{IDVariante: 1}))
	require.Error(t, err)
	assert.False(t, IsPermanent(err))
}

// ── Retry policy ─────────────────────────────────────────────────────────────

func TestRunHandler_ReintentaHastaMax(t *testing.T) {
	calls := 0
	h := HandlerFunc(func(context.Context, json.RawMessage) error {
		calls++
		return errors.New("transitorio")
	})

	attempts, err := runHandler(context.Background(), h, Job{Type: "x"})
	assert.Error(t, err)
	assert.Equal(t, MaxJobAttempts, attempts)
	assert.Equal(t, MaxJobAttempts, calls)
}

func TestRunHandler_ExitoTrasFallo(t *testing.T) {
	calls := 0
	h := HandlerFunc(func(context.Context, json.RawMessage) error {
		calls++
		if calls == 1 {
			return errors.New("transitorio")
		}
		return nil
	})

	attempts, err := runHandler(context.Background(), h, Job{Type: "x"})
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRunHandler_PermanenteNoReintenta(t *testing.T) {
	calls := 0
	h := HandlerFunc(func(context.Context, json.RawMessage) error {
		calls++
		return Permanent(errors.New("payload roto"))
	})

	attempts, err := runHandler(context.Background(), h, Job{Type: "x"})
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := withRetry(ctx, 3, func(int) error {
		cancel()
		return errors.New("falla")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRequeueable(t *testing.T) {
	assert.True(t, requeueable(DLQEntry{JobType: JobVerificarStock}))
	assert.True(t, requeueable(DLQEntry{JobType: JobAlertaEmail, Requeues: MaxRequeues - 1}))
	assert.False(t, requeueable(DLQEntry{JobType: JobAlertaEmail, Requeues: MaxRequeues}))
	assert.False(t, requeueable(DLQEntry{JobType: "unknown"}))
}

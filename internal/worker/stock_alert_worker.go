package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/dto"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/infra"

	"github.com/rs/zerolog/log"
)

// VerificarStockPayload is the job envelope sent by the ledger after every
// outgoing movement.
type VerificarStockPayload struct {
	IDVariante int64 `json:"idvariante"`
}

// StockConsulta is the read side of the ledger the worker needs.
type StockConsulta interface {
	ListarVariantesConStock(ctx context.Context, ids []int64) ([]dto.VarianteStockResponse, error)
}

type AlertaPublisher interface {
	StockBajo(ctx context.Context, idVariante int64, producto string, stock, minimo int) error
}

type AlertaEnqueuer interface {
	EnqueueAlertaEmail(ctx context.Context, payload AlertaEmailPayload) error
}

// StockAlertWorker recomputes a variant's derived stock and raises a
// stock.bajo event (and an alert mail) when it is at or below its minimum.
// It never writes movements.
type StockAlertWorker struct {
	ledger  StockConsulta
	eventos AlertaPublisher
	emails  AlertaEnqueuer
}

// NewStockAlertWorker wires the worker. eventos and emails may be nil.
func NewStockAlertWorker(ledger StockConsulta, eventos AlertaPublisher, emails AlertaEnqueuer) *StockAlertWorker {
	return &StockAlertWorker{ledger: ledger, eventos: eventos, emails: emails}
}

func (w *StockAlertWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload VerificarStockPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(fmt.Errorf("stock_alert_worker: invalid payload: %w", err))
	}
	if payload.IDVariante <= 0 {
		return Permanent(fmt.Errorf("stock_alert_worker: invalid idvariante %d", payload.IDVariante))
	}

	rows, err := w.ledger.ListarVariantesConStock(ctx, []int64{payload.IDVariante})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		log.Info().Int64("idvariante", payload.IDVariante).Msg("stock_alert_worker: variante inexistente, nada que verificar")
		return nil
	}
	v := rows[0]
	if !v.BajoMinimo || !v.Estado {
		return nil
	}

	infra.AlertasStockBajoTotal.Inc()
	log.Warn().
		Int64("idvariante", v.IDVariante).
		Str("producto", v.Producto).
		Int("stock_actual", v.StockActual).
		Int("stock_minimo", v.StockMinimo).
		Msg("stock bajo minimo")

	// Mail first: its enqueue is deduplicated per variant, so a retry after a
	// failed publish queues no second mail and no event precedes a failed enqueue.
	if w.emails != nil {
		if err := w.emails.EnqueueAlertaEmail(ctx, AlertaEmailPayload{
			IDVariante:  v.IDVariante,
			Producto:    v.Producto,
			SKU:         v.SKU,
			StockActual: v.StockActual,
			StockMinimo: v.StockMinimo,
		}); err != nil {
			return fmt.Errorf("stock_alert_worker: enqueue email: %w", err)
		}
	}
	if w.eventos != nil {
		if err := w.eventos.StockBajo(ctx, v.IDVariante, v.Producto, v.StockActual, v.StockMinimo); err != nil {
			return fmt.Errorf("stock_alert_worker: publish stock.bajo: %w", err)
		}
	}
	return nil
}

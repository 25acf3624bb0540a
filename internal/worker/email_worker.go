package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/dto"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/infra"

	"github.com/rs/zerolog/log"
)

// AlertaEmailPayload is the job envelope for JobAlertaEmail.
type AlertaEmailPayload struct {
	IDVariante  int64   `json:"idvariante"`
	Producto    string  `json:"producto"`
	SKU         *string `json:"sku,omitempty"`
	StockActual int     `json:"stock_actual"`
	StockMinimo int     `json:"stock_minimo"`
}

type AlertaSender interface {
	EnviarAlertaStock(subject, body string, adjunto []byte) error
}

type AlertasSource interface {
	ObtenerAlertas(ctx context.Context) ([]dto.VarianteStockResponse, error)
}

// EmailWorker mails low-stock alerts. The mail carries the full list of
// variants currently under their minimum as an XLSX attachment.
type EmailWorker struct {
	mailer  AlertaSender
	alertas AlertasSource
}

func NewEmailWorker(mailer AlertaSender, alertas AlertasSource) *EmailWorker {
	return &EmailWorker{mailer: mailer, alertas: alertas}
}

func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload AlertaEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(fmt.Errorf("email_worker: invalid payload: %w", err))
	}

	var adjunto []byte
	if w.alertas != nil {
		rows, err := w.alertas.ObtenerAlertas(ctx)
		if err != nil {
			return err
		}
		adjunto, err = infra.GenerarReporteStockXLSX(rows)
		if err != nil {
			log.Warn().Err(err).Msg("email_worker: no se pudo generar el adjunto, se envia sin reporte")
			adjunto = nil
		}
	}

	subject := fmt.Sprintf("Stock bajo: %s", payload.Producto)
	if err := w.mailer.EnviarAlertaStock(subject, alertaBody(payload), adjunto); err != nil {
		return err
	}
	log.Info().Int64("idvariante", payload.IDVariante).Msg("email_worker: alerta enviada")
	return nil
}

func alertaBody(p AlertaEmailPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "La variante %d de %q quedo con stock %d (minimo %d).\n", p.IDVariante, p.Producto, p.StockActual, p.StockMinimo)
	if p.SKU != nil {
		fmt.Fprintf(&b, "SKU: %s\n", *p.SKU)
	}
	b.WriteString("Se adjunta el listado completo de variantes bajo minimo.\n")
	return b.String()
}

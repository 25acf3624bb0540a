package infra

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/dto"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerarReporteStockPDF renders the stock listing as an A4 landscape table.
// Rows below their minimum are printed in bold.
func GenerarReporteStockPDF(rows []dto.VarianteStockResponse) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr("Reporte de stock"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, time.Now().Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	cols := []struct {
		title string
		w     float64
		align string
	}{
		{"ID", 0.06, "R"},
		{"SKU", 0.14, "L"},
		{"Producto", 0.34, "L"},
		{"Stock", 0.09, "R"},
		{tr("Mínimo"), 0.09, "R"},
		{tr("Bajo mín."), 0.10, "C"},
		{"Valorizado", 0.18, "R"},
	}

	pdf.SetFont("Helvetica", "B", 8)
	for i, c := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(contentW*c.w, 6, c.title, "B", ln, c.align, false, 0, "")
	}

	total := decimal.Zero
	for _, r := range rows {
		style := ""
		if r.BajoMinimo {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 8)

		sku := ""
		if r.SKU != nil {
			sku = *r.SKU
		}
		nombre := r.Producto
		if len([]rune(nombre)) > 48 {
			nombre = string([]rune(nombre)[:47]) + "..."
		}
		bajo := ""
		if r.BajoMinimo {
			bajo = "SI"
		}
		val := r.Valorizado()
		total = total.Add(val)

		cells := []string{
			fmt.Sprintf("%d", r.IDVariante),
			tr(sku),
			tr(nombre),
			fmt.Sprintf("%d", r.StockActual),
			fmt.Sprintf("%d", r.StockMinimo),
			bajo,
			"$" + val.StringFixed(2),
		}
		for i, c := range cols {
			ln := 0
			if i == len(cols)-1 {
				ln = 1
			}
			pdf.CellFormat(contentW*c.w, 5, cells[i], "", ln, c.align, false, 0, "")
		}
	}

	// ── Totals ────────────────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW*0.82, 6, "TOTAL VALORIZADO:", "", 0, "R", false, 0, "")
	pdf.CellFormat(contentW*0.18, 6, "$"+total.StringFixed(2), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render reporte: %w", err)
	}
	return buf.Bytes(), nil
}

package infra

import (
	"fmt"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/dto"

	"github.com/xuri/excelize/v2"
)

const hojaStock = "Stock"

var encabezadoReporte = []interface{}{
	"ID variante", "SKU", "Codigo de barras", "Producto",
	"Stock actual", "Stock minimo", "Bajo minimo", "Precio compra", "Valorizado",
}

// GenerarReporteStockXLSX writes one row per variant on a single "Stock" sheet.
func GenerarReporteStockXLSX(rows []dto.VarianteStockResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", hojaStock); err != nil {
		return nil, fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	if err := f.SetSheetRow(hojaStock, "A1", &encabezadoReporte); err != nil {
		return nil, fmt.Errorf("xlsx: header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: style: %w", err)
	}
	if err := f.SetRowStyle(hojaStock, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("xlsx: style: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		var precio interface{}
		if r.PrecioCompra != nil {
			precio, _ = r.PrecioCompra.Float64()
		}
		valorizado, _ := r.Valorizado().Float64()
		fila := []interface{}{
			r.IDVariante, deref(r.SKU), deref(r.CodigoBarras), r.Producto,
			r.StockActual, r.StockMinimo, siNo(r.BajoMinimo), precio, valorizado,
		}
		if err := f.SetSheetRow(hojaStock, cell, &fila); err != nil {
			return nil, fmt.Errorf("xlsx: row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func siNo(b bool) string {
	if b {
		return "SI"
	}
	return "NO"
}

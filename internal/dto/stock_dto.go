package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RegistrarMovimientoRequest uses pointers so a missing field can be told
// apart from a zero value; the ledger rejects both.
type RegistrarMovimientoRequest struct {
	IDVariante     *int64  `json:"idvariante"`
	Tipo           *string `json:"tipo"`
	Cantidad       *int    `json:"cantidad"`
	Descripcion    *string `json:"descripcion"`
	ReferenciaID   *int64  `json:"referencia_id"`
	ReferenciaTipo *string `json:"referencia_tipo"`
	IDEmpleado     *int64  `json:"idempleado"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type MovimientoFilter struct {
	IDVariante int64     `form:"idvariante"`
	Tipo       string    `form:"tipo"       validate:"omitempty,oneof=ENTRADA SALIDA AJUSTE"`
	Desde      time.Time `form:"desde"      time_format:"2006-01-02"`
	Hasta      time.Time `form:"hasta"      time_format:"2006-01-02"`
	Page       int       `form:"page,default=1"   validate:"min=1"`
	Limit      int       `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoResponse struct {
	IDMovimiento   int64     `json:"idmovimiento"`
	IDVariante     int64     `json:"idvariante"`
	Tipo           string    `json:"tipo"`
	Cantidad       int       `json:"cantidad"`
	Descripcion    *string   `json:"descripcion"`
	ReferenciaID   *int64    `json:"referencia_id"`
	ReferenciaTipo *string   `json:"referencia_tipo"`
	IDEmpleado     *int64    `json:"idempleado"`
	Fecha          time.Time `json:"fecha"`
}

// MovimientoCreadoResponse is the body of POST /api/stock/movimientos.
type MovimientoCreadoResponse struct {
	Status       string `json:"status"`
	IDMovimiento int64  `json:"idmovimiento"`
}

type MovimientoListResponse struct {
	Data       []MovimientoResponse `json:"data"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}

type StockActualResponse struct {
	IDVariante  int64 `json:"idvariante"`
	StockActual int   `json:"stock_actual"`
}

type AtributoValorResponse struct {
	Nombre string      `json:"nombre"`
	Slug   string      `json:"slug"`
	Valor  interface{} `json:"valor"`
}

// VarianteStockResponse is one row of the variant listing, with stock derived
// from the movement history at read time.
type VarianteStockResponse struct {
	IDVariante   int64                   `json:"idvariante"`
	IDProducto   int64                   `json:"idproducto"`
	Producto     string                  `json:"producto"`
	SKU          *string                 `json:"sku"`
	CodigoBarras *string                 `json:"codigo_barras"`
	PrecioCompra *decimal.Decimal        `json:"precio_compra"`
	PrecioVenta  *decimal.Decimal        `json:"precio_venta"`
	StockActual  int                     `json:"stock_actual"`
	StockMinimo  int                     `json:"stock_minimo"`
	BajoMinimo   bool                    `json:"bajo_minimo"`
	Estado       bool                    `json:"estado"`
	Atributos    []AtributoValorResponse `json:"atributos"`
}

// Valorizado is the stock valued at purchase price; zero without a price.
func (v VarianteStockResponse) Valorizado() decimal.Decimal {
	if v.PrecioCompra == nil {
		return decimal.Zero
	}
	return v.PrecioCompra.Mul(decimal.NewFromInt(int64(v.StockActual)))
}

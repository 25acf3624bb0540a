package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/dto"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/infra"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/service"

	"github.com/gin-gonic/gin"
)

type StockHandler struct{ ledger service.StockLedger }

func NewStockHandler(ledger service.StockLedger) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// RegistrarMovimiento godoc
// @Summary Registrar un movimiento de stock
// @Tags stock
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarMovimientoRequest true "Movimiento"
// @Success 201 {object} dto.MovimientoCreadoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 503 {object} apierror.APIError
// @Router /api/stock/movimientos [post]
func (h *StockHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.RegistrarMovimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	mov, err := h.ledger.RegistrarMovimiento(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MovimientoCreadoResponse{Status: "ok", IDMovimiento: mov.IDMovimiento})
}

// ListarMovimientos godoc
// @Summary Historial de movimientos
// @Tags stock
// @Produce json
// @Param idvariante query int false "Variante"
// @Param tipo query string false "ENTRADA, SALIDA o AJUSTE"
// @Param desde query string false "YYYY-MM-DD"
// @Param hasta query string false "YYYY-MM-DD (exclusivo)"
// @Param page query int false "Pagina"
// @Param limit query int false "Tamaño de pagina"
// @Success 200 {object} dto.MovimientoListResponse
// @Router /api/stock/movimientos [get]
func (h *StockHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.ledger.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerAlertas GET /api/stock/alertas
func (h *StockHandler) ObtenerAlertas(c *gin.Context) {
	resp, err := h.ledger.ObtenerAlertas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReporteXLSX GET /api/stock/reporte.xlsx
func (h *StockHandler) ReporteXLSX(c *gin.Context) {
	h.reporte(c, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", infra.GenerarReporteStockXLSX)
}

// ReportePDF GET /api/stock/reporte.pdf
func (h *StockHandler) ReportePDF(c *gin.Context) {
	h.reporte(c, "pdf", "application/pdf", infra.GenerarReporteStockPDF)
}

func (h *StockHandler) reporte(c *gin.Context, ext, contentType string, render func([]dto.VarianteStockResponse) ([]byte, error)) {
	ids, err := parseIDList(c.Query("ids"))
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := h.ledger.ListarVariantesConStock(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := render(rows)
	if err != nil {
		respondError(c, err)
		return
	}
	name := fmt.Sprintf("reporte_stock_%s.%s", time.Now().Format("20060102"), ext)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, contentType, data)
}

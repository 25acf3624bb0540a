package handler

import (
	"net/http"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/dto"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/service"

	"github.com/gin-gonic/gin"
)

type VariantesHandler struct{ ledger service.StockLedger }

func NewVariantesHandler(ledger service.StockLedger) *VariantesHandler {
	return &VariantesHandler{ledger: ledger}
}

// Listar godoc
// @Summary Variantes con stock actual
// @Tags variantes
// @Produce json
// @Param ids query string false "Lista de ids separados por coma"
// @Success 200 {array} dto.VarianteStockResponse
// @Failure 400 {object} apierror.APIError
// @Router /api/variantes [get]
func (h *VariantesHandler) Listar(c *gin.Context) {
	ids, err := parseIDList(c.Query("ids"))
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.ledger.ListarVariantesConStock(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StockActual GET /api/variantes/:id/stock
func (h *VariantesHandler) StockActual(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	stock, err := h.ledger.StockActual(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StockActualResponse{IDVariante: id, StockActual: stock})
}

// Eliminar DELETE /api/variantes/:id
// Only variants without movement history can be deleted (409 otherwise).
func (h *VariantesHandler) Eliminar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ledger.EliminarVariante(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

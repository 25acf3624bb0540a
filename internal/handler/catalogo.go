package handler

import (
	"net/http"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogoHandler struct{ svc service.CatalogoService }

func NewCatalogoHandler(svc service.CatalogoService) *CatalogoHandler {
	return &CatalogoHandler{svc: svc}
}

// Categorias GET /api/categorias
func (h *CatalogoHandler) Categorias(c *gin.Context) {
	resp, err := h.svc.ListarCategorias(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Productos godoc
// @Summary Productos con variantes y stock actual
// @Tags catalogo
// @Produce json
// @Success 200 {array} dto.ProductoResponse
// @Router /api/productos [get]
func (h *CatalogoHandler) Productos(c *gin.Context) {
	resp, err := h.svc.ListarProductos(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

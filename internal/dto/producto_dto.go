package dto

import "github.com/shopspring/decimal"

type VarianteResponse struct {
	IDVariante   int64                   `json:"idvariante"`
	SKU          *string                 `json:"sku"`
	CodigoBarras *string                 `json:"codigo_barras"`
	PrecioCompra *decimal.Decimal        `json:"precio_compra"`
	PrecioVenta  *decimal.Decimal        `json:"precio_venta"`
	StockMinimo  int                     `json:"stock_minimo"`
	StockActual  int                     `json:"stock_actual"`
	Atributos    []AtributoValorResponse `json:"atributos"`
}

type ProductoResponse struct {
	IDProducto   int64              `json:"idproducto"`
	Nombre       string             `json:"nombre"`
	Descripcion  *string            `json:"descripcion"`
	PrecioCompra *decimal.Decimal   `json:"preciocompra"`
	PrecioVenta  *decimal.Decimal   `json:"precioventa"`
	Estado       bool               `json:"estado"`
	IDCategoria  *int64             `json:"idcategoria"`
	Categoria    *string            `json:"categoria"`
	IDProveedor  *int64             `json:"idproveedor"`
	Proveedor    *string            `json:"proveedor"`
	Variantes    []VarianteResponse `json:"variantes"`
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto groups the sellable variants of one catalog item.
type Producto struct {
	IDProducto   int64            `gorm:"column:idproducto;primaryKey;autoIncrement"`
	Nombre       string           `gorm:"column:nombre;not null;index"`
	PrecioCompra *decimal.Decimal `gorm:"column:preciocompra;type:numeric(12,2)"`
	PrecioVenta  *decimal.Decimal `gorm:"column:precioventa;type:numeric(12,2)"`
	StockMinimo  *int             `gorm:"column:stockminimo"`
	FechaIngreso time.Time        `gorm:"column:fechaingreso;type:date;autoCreateTime"`
	Descripcion  *string          `gorm:"column:descripcion"`
	Estado       bool             `gorm:"column:estado;not null;default:true"`
	IDCategoria  *int64           `gorm:"column:idcategoria;index"`
	IDProveedor  *int64           `gorm:"column:idproveedor;index"`

	Categoria *Categoria         `gorm:"foreignKey:IDCategoria;references:IDCategoria"`
	Proveedor *Proveedor         `gorm:"foreignKey:IDProveedor;references:IDProveedor"`
	Variantes []ProductoVariante `gorm:"foreignKey:IDProducto;references:IDProducto"`
}

func (Producto) TableName() string { return "productos" }

// ProductoVariante is a purchasable unit (size, color, SKU) of a Producto.
// It owns its movement history: it can only be deleted once that history is empty.
type ProductoVariante struct {
	IDVariante    int64            `gorm:"column:idvariante;primaryKey;autoIncrement"`
	IDProducto    int64            `gorm:"column:idproducto;not null;index"`
	SKU           *string          `gorm:"column:sku;type:varchar(100);uniqueIndex"`
	CodigoBarras  *string          `gorm:"column:codigo_barras;type:varchar(100);uniqueIndex"`
	PrecioCompra  *decimal.Decimal `gorm:"column:precio_compra;type:numeric(12,2)"`
	PrecioVenta   *decimal.Decimal `gorm:"column:precio_venta;type:numeric(12,2)"`
	StockMinimo   int              `gorm:"column:stock_minimo;not null;default:0"`
	Estado        bool             `gorm:"column:estado;not null;default:true"`
	FechaCreacion time.Time        `gorm:"column:fecha_creacion;autoCreateTime"`

	Producto *Producto       `gorm:"foreignKey:IDProducto;references:IDProducto"`
	Valores  []VarianteValor `gorm:"foreignKey:IDVariante;references:IDVariante"`
}

func (ProductoVariante) TableName() string { return "producto_variantes" }

package repository

import (
	"context"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/model"

	"gorm.io/gorm"
)

// ProductoRepository is the read side of the catalog.
type ProductoRepository interface {
	// ListConVariantes returns every product with category, supplier, variants
	// and variant attribute values preloaded (one IN query per relation).
	ListConVariantes(ctx context.Context) ([]model.Producto, error)
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) ListConVariantes(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Preload("Categoria").
		Preload("Proveedor").
		Preload("Variantes", func(db *gorm.DB) *gorm.DB { return db.Order("idvariante ASC") }).
		Preload("Variantes.Valores", func(db *gorm.DB) *gorm.DB { return db.Order("idatributo ASC") }).
		Preload("Variantes.Valores.Atributo").
		Order("nombre ASC, idproducto ASC").
		Find(&productos).Error
	return productos, err
}

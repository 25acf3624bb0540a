package repository

import (
	"context"
	"errors"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VarianteFilter struct {
	IDs         []int64 // empty means all
	SoloActivas bool
}

type VarianteRepository interface {
	FindByID(ctx context.Context, id int64) (*model.ProductoVariante, error)
	// List returns variants with Producto and attribute values loaded,
	// ordered by product name then variant id.
	List(ctx context.Context, filter VarianteFilter) ([]model.ProductoVariante, error)
	// Delete removes a variant without history. A variant with movements
	// yields ErrVarianteConMovimientos; nothing cascades.
	Delete(ctx context.Context, id int64) error
}

type varianteRepo struct{ db *gorm.DB }

func NewVarianteRepository(db *gorm.DB) VarianteRepository { return &varianteRepo{db: db} }

func (r *varianteRepo) FindByID(ctx context.Context, id int64) (*model.ProductoVariante, error) {
	var v model.ProductoVariante
	err := r.db.WithContext(ctx).Preload("Producto").Where("idvariante = ?", id).Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVarianteNoEncontrada
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *varianteRepo) List(ctx context.Context, filter VarianteFilter) ([]model.ProductoVariante, error) {
	q := r.db.WithContext(ctx).
		Joins("Producto").
		Preload("Valores", func(db *gorm.DB) *gorm.DB { return db.Order("idatributo ASC") }).
		Preload("Valores.Atributo")
	if len(filter.IDs) > 0 {
		q = q.Where("producto_variantes.idvariante IN ?", filter.IDs)
	}
	if filter.SoloActivas {
		q = q.Where("producto_variantes.estado = true")
	}

	var list []model.ProductoVariante
	err := q.Order(`"Producto".nombre ASC, producto_variantes.idvariante ASC`).Find(&list).Error
	return list, err
}

func (r *varianteRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// FOR UPDATE conflicts with the FOR SHARE taken by Registrar, so no
		// movement can slip in between the count and the delete.
		var v model.ProductoVariante
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("idvariante").
			Where("idvariante = ?", id).
			Take(&v).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVarianteNoEncontrada
		}
		if err != nil {
			return err
		}

		var n int64
		if err := tx.Model(&model.MovimientoStock{}).Where("idvariante = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrVarianteConMovimientos
		}
		return tx.Where("idvariante = ?", id).Delete(&model.ProductoVariante{}).Error
	})
}

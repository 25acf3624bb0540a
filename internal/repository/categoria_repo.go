package repository

import (
	"context"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/model"

	"gorm.io/gorm"
)

type CategoriaRepository interface {
	Listar(ctx context.Context) ([]model.Categoria, error)
}

type categoriaRepository struct{ db *gorm.DB }

func NewCategoriaRepository(db *gorm.DB) CategoriaRepository {
	return &categoriaRepository{db: db}
}

func (r *categoriaRepository) Listar(ctx context.Context) ([]model.Categoria, error) {
	var list []model.Categoria
	err := r.db.WithContext(ctx).Order("nombre asc").Find(&list).Error
	return list, err
}

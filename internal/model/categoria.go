package model

import (
	"time"
)

// Categoria classifies products.
type Categoria struct {
	IDCategoria   int64     `gorm:"column:idcategoria;primaryKey;autoIncrement"`
	Nombre        string    `gorm:"column:nombre;type:varchar(150);not null"`
	Slug          string    `gorm:"column:slug;type:varchar(150);uniqueIndex;not null"`
	Descripcion   *string   `gorm:"column:descripcion"`
	Estado        bool      `gorm:"column:estado;not null;default:true"`
	FechaCreacion time.Time `gorm:"column:fecha_creacion;autoCreateTime"`
}

// TableName overrides GORM's default singular → plural logic for Spanish names.
func (Categoria) TableName() string { return "categorias" }

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Atributo is a free-form variant attribute (talle, color, maceta…).
type Atributo struct {
	IDAtributo    int64     `gorm:"column:idatributo;primaryKey;autoIncrement"`
	Nombre        string    `gorm:"column:nombre;type:varchar(150);not null"`
	Slug          string    `gorm:"column:slug;type:varchar(150);uniqueIndex;not null"`
	TipoDato      string    `gorm:"column:tipo_dato;type:varchar(30);not null"`
	EsObligatorio bool      `gorm:"column:es_obligatorio;not null;default:false"`
	Orden         int       `gorm:"column:orden;not null;default:0"`
	Activo        bool      `gorm:"column:activo;not null;default:true"`
	FechaCreacion time.Time `gorm:"column:fecha_creacion;autoCreateTime"`
}

func (Atributo) TableName() string { return "atributos" }

// VarianteValor holds the value of one attribute for one variant.
// Exactly one of the typed value columns is expected to be set.
type VarianteValor struct {
	IDVariante    int64            `gorm:"column:idvariante;primaryKey"`
	IDAtributo    int64            `gorm:"column:idatributo;primaryKey"`
	ValorTexto    *string          `gorm:"column:valor_texto"`
	ValorNumero   *decimal.Decimal `gorm:"column:valor_numero;type:numeric"`
	ValorBooleano *bool            `gorm:"column:valor_booleano"`
	IDOpcion      *int64           `gorm:"column:idopcion"`

	Atributo *Atributo `gorm:"foreignKey:IDAtributo;references:IDAtributo"`
}

func (VarianteValor) TableName() string { return "variante_valores" }

// Valor returns the populated typed value, checked text → number → boolean.
func (v VarianteValor) Valor() interface{} {
	switch {
	case v.ValorTexto != nil:
		return *v.ValorTexto
	case v.ValorNumero != nil:
		f, _ := v.ValorNumero.Float64()
		return f
	case v.ValorBooleano != nil:
		return *v.ValorBooleano
	}
	return nil
}

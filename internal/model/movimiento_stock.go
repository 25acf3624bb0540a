package model

import (
	"time"
)

// TipoMovimiento is the kind of a stock movement. Direction is carried by the
// kind, never by the sign of Cantidad.
type TipoMovimiento string

const (
	TipoEntrada TipoMovimiento = "ENTRADA"
	TipoSalida  TipoMovimiento = "SALIDA"
	// TipoAjuste counts as inbound. There is no negative adjustment kind; an
	// overcount is corrected with a SALIDA.
	TipoAjuste TipoMovimiento = "AJUSTE"
)

// TiposMovimiento lists every accepted kind, in display order.
var TiposMovimiento = []TipoMovimiento{TipoEntrada, TipoSalida, TipoAjuste}

// Valido reports whether t is one of the accepted kinds (case-sensitive).
func (t TipoMovimiento) Valido() bool {
	switch t {
	case TipoEntrada, TipoSalida, TipoAjuste:
		return true
	}
	return false
}

// Signo returns -1 for outbound kinds and +1 for everything else.
func (t TipoMovimiento) Signo() int {
	if t == TipoSalida {
		return -1
	}
	return 1
}

// MovimientoStock is one immutable entry of the stock ledger.
// Rows are only ever inserted; current stock is derived from them on read.
type MovimientoStock struct {
	IDMovimiento   int64          `gorm:"column:idmovimiento;primaryKey;autoIncrement"`
	IDVariante     int64          `gorm:"column:idvariante;not null;index"`
	Tipo           TipoMovimiento `gorm:"column:tipo;type:varchar(20);not null"`
	Cantidad       int            `gorm:"column:cantidad;not null"` // always > 0
	ReferenciaID   *int64         `gorm:"column:referencia_id"`
	ReferenciaTipo *string        `gorm:"column:referencia_tipo;type:varchar(50)"`
	Descripcion    *string        `gorm:"column:descripcion"`
	IDEmpleado     *int64         `gorm:"column:idempleado"`
	Fecha          time.Time      `gorm:"column:fecha;not null;autoCreateTime"`

	Variante *ProductoVariante `gorm:"foreignKey:IDVariante;references:IDVariante"`
}

// TableName keeps the Spanish plural used by the schema.
func (MovimientoStock) TableName() string { return "movimientos_stock" }

// Delta is the signed contribution of the movement to derived stock.
func (m MovimientoStock) Delta() int { return m.Tipo.Signo() * m.Cantidad }

// SaldoMovimientos folds a movement history into its derived stock.
// An empty history yields 0.
func SaldoMovimientos(movs []MovimientoStock) int {
	saldo := 0
	for _, m := range movs {
		saldo += m.Delta()
	}
	return saldo
}

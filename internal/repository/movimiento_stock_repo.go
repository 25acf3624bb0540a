package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MovimientoStockFilter defines filters for listing stock movements.
type MovimientoStockFilter struct {
	IDVariante int64
	Tipo       string
	Desde      time.Time
	Hasta      time.Time
	Page       int
	Limit      int
}

// MovimientoStockRepository is append-only: there is no update or delete.
type MovimientoStockRepository interface {
	// Registrar inserts m after share-locking its variant, in one transaction.
	// Returns ErrVarianteNoEncontrada when the variant does not exist.
	Registrar(ctx context.Context, m *model.MovimientoStock) error
	// StockPorVariantes returns the signed sum per variant for ids, in one
	// grouped query. Variants without movements are absent from the map.
	StockPorVariantes(ctx context.Context, ids []int64) (map[int64]int, error)
	List(ctx context.Context, filter MovimientoStockFilter) ([]model.MovimientoStock, int64, error)
}

type movimientoStockRepo struct{ db *gorm.DB }

func NewMovimientoStockRepository(db *gorm.DB) MovimientoStockRepository {
	return &movimientoStockRepo{db: db}
}

func (r *movimientoStockRepo) Registrar(ctx context.Context, m *model.MovimientoStock) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// FOR SHARE keeps a concurrent variant delete out until commit.
		var v model.ProductoVariante
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Select("idvariante").
			Where("idvariante = ?", m.IDVariante).
			Take(&v).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVarianteNoEncontrada
		}
		if err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(m).Error
	})
}

type stockFila struct {
	IDVariante int64 `gorm:"column:idvariante"`
	Stock      int   `gorm:"column:stock"`
}

// maxIDsEnFiltro bounds the IN list; Postgres accepts at most 65535 bind
// parameters per statement. Larger requests aggregate every variant in one
// pass and keep only the requested ids.
var maxIDsEnFiltro = 10000

func (r *movimientoStockRepo) StockPorVariantes(ctx context.Context, ids []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	q := r.db.WithContext(ctx).
		Model(&model.MovimientoStock{}).
		Select("idvariante, COALESCE(SUM(CASE WHEN tipo = ? THEN -cantidad ELSE cantidad END), 0) AS stock", model.TipoSalida).
		Group("idvariante")
	filtrado := len(ids) <= maxIDsEnFiltro
	if filtrado {
		q = q.Where("idvariante IN ?", ids)
	}

	var filas []stockFila
	if err := q.Scan(&filas).Error; err != nil {
		return nil, err
	}

	var pedidos map[int64]struct{}
	if !filtrado {
		pedidos = make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			pedidos[id] = struct{}{}
		}
	}
	for _, f := range filas {
		if pedidos != nil {
			if _, ok := pedidos[f.IDVariante]; !ok {
				continue
			}
		}
		out[f.IDVariante] = f.Stock
	}
	return out, nil
}

func (r *movimientoStockRepo) List(ctx context.Context, filter MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoStock{})
	if filter.IDVariante > 0 {
		q = q.Where("idvariante = ?", filter.IDVariante)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if !filter.Desde.IsZero() {
		q = q.Where("fecha >= ?", filter.Desde)
	}
	if !filter.Hasta.IsZero() {
		q = q.Where("fecha < ?", filter.Hasta)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}
	offset := (page - 1) * limit

	var movimientos []model.MovimientoStock
	err := q.Order("fecha DESC, idmovimiento DESC").Offset(offset).Limit(limit).Find(&movimientos).Error
	return movimientos, total, err
}

package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/model"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/repository"
)

// ── In-memory MovimientoStockRepository stub ─────────────────────────────────

type stubMovimientoRepo struct {
	mu          sync.Mutex
	variantes   *stubVarianteRepo
	movimientos []model.MovimientoStock
	nextID      int64
	err         error
}

func newStubMovimientoRepo(v *stubVarianteRepo) *stubMovimientoRepo {
	return &stubMovimientoRepo{variantes: v}
}

func (r *stubMovimientoRepo) Registrar(_ context.Context, m *model.MovimientoStock) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.variantes.get(m.IDVariante); !ok {
		return repository.ErrVarianteNoEncontrada
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.IDMovimiento = r.nextID
	m.Fecha = time.Now()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) StockPorVariantes(_ context.Context, ids []int64) (map[int64]int, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int64]int)
	for _, id := range ids {
		var propios []model.MovimientoStock
		for _, m := range r.movimientos {
			if m.IDVariante == id {
				propios = append(propios, m)
			}
		}
		if len(propios) > 0 {
			out[id] = model.SaldoMovimientos(propios)
		}
	}
	return out, nil
}

func (r *stubMovimientoRepo) List(_ context.Context, f repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MovimientoStock
	for i := len(r.movimientos) - 1; i >= 0; i-- {
		m := r.movimientos[i]
		if f.IDVariante > 0 && m.IDVariante != f.IDVariante {
			continue
		}
		if f.Tipo != "" && string(m.Tipo) != f.Tipo {
			continue
		}
		out = append(out, m)
	}
	total := int64(len(out))
	start := (f.Page - 1) * f.Limit
	if start > len(out) {
		start = len(out)
	}
	end := start + f.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *stubMovimientoRepo) count(idVariante int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.movimientos {
		if m.IDVariante == idVariante {
			n++
		}
	}
	return n
}

// ── In-memory VarianteRepository stub ────────────────────────────────────────

type stubVarianteRepo struct {
	mu        sync.Mutex
	variantes map[int64]*model.ProductoVariante
	movs      *stubMovimientoRepo
}

func newStubVarianteRepo() *stubVarianteRepo {
	return &stubVarianteRepo{variantes: make(map[int64]*model.ProductoVariante)}
}

func (r *stubVarianteRepo) add(id int64, producto string, minimo int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variantes[id] = &model.ProductoVariante{
		IDVariante:  id,
		IDProducto:  id * 10,
		StockMinimo: minimo,
		Estado:      true,
		Producto:    &model.Producto{IDProducto: id * 10, Nombre: producto},
	}
}

func (r *stubVarianteRepo) get(id int64) (*model.ProductoVariante, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.variantes[id]
	return v, ok
}

func (r *stubVarianteRepo) FindByID(_ context.Context, id int64) (*model.ProductoVariante, error) {
	v, ok := r.get(id)
	if !ok {
		return nil, repository.ErrVarianteNoEncontrada
	}
	return v, nil
}

func (r *stubVarianteRepo) List(_ context.Context, f repository.VarianteFilter) ([]model.ProductoVariante, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[int64]bool, len(f.IDs))
	for _, id := range f.IDs {
		want[id] = true
	}
	var out []model.ProductoVariante
	for id, v := range r.variantes {
		if len(want) > 0 && !want[id] {
			continue
		}
		if f.SoloActivas && !v.Estado {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Producto.Nombre != out[j].Producto.Nombre {
			return out[i].Producto.Nombre < out[j].Producto.Nombre
		}
		return out[i].IDVariante < out[j].IDVariante
	})
	return out, nil
}

func (r *stubVarianteRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.get(id); !ok {
		return repository.ErrVarianteNoEncontrada
	}
	if r.movs != nil && r.movs.count(id) > 0 {
		return repository.ErrVarianteConMovimientos
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.variantes, id)
	return nil
}

// ── Side-effect recorders ────────────────────────────────────────────────────

type recEventos struct {
	mu   sync.Mutex
	ids  []int64
	fail error
}

func (e *recEventos) MovimientoRegistrado(_ context.Context, idMovimiento, _ int64, _ string, _ int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ids = append(e.ids, idMovimiento)
	return e.fail
}

type recCola struct {
	mu   sync.Mutex
	ids  []int64
	fail error
}

func (c *recCola) EnqueueVerificarStock(_ context.Context, idVariante int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, idVariante)
	return c.fail
}

package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/apierror"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/dto"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/infra"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/model"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/repository"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// StockLedger records stock movements and derives current stock from them.
// Stock is never stored: every read is a signed sum over the movement history.
type StockLedger interface {
	RegistrarMovimiento(ctx context.Context, req dto.RegistrarMovimientoRequest) (*dto.MovimientoResponse, error)
	StockActual(ctx context.Context, idVariante int64) (int, error)
	StockActualLote(ctx context.Context, ids []int64) (map[int64]int, error)
	ListarVariantesConStock(ctx context.Context, ids []int64) ([]dto.VarianteStockResponse, error)
	ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
	ObtenerAlertas(ctx context.Context) ([]dto.VarianteStockResponse, error)
	EliminarVariante(ctx context.Context, idVariante int64) error
}

// EventosStock receives a notification for every committed movement.
type EventosStock interface {
	MovimientoRegistrado(ctx context.Context, idMovimiento, idVariante int64, tipo string, cantidad int) error
}

// ColaVerificacion schedules an asynchronous low-stock check for a variant.
type ColaVerificacion interface {
	EnqueueVerificarStock(ctx context.Context, idVariante int64) error
}

const sideEffectTimeout = 3 * time.Second

type stockLedger struct {
	movimientos repository.MovimientoStockRepository
	variantes   repository.VarianteRepository
	eventos     EventosStock
	cola        ColaVerificacion
}

// NewStockLedger wires the ledger to its repositories. eventos and cola may
// be nil; they only drive post-commit notifications.
func NewStockLedger(
	movimientos repository.MovimientoStockRepository,
	variantes repository.VarianteRepository,
	eventos EventosStock,
	cola ColaVerificacion,
) StockLedger {
	return &stockLedger{movimientos: movimientos, variantes: variantes, eventos: eventos, cola: cola}
}

func (s *stockLedger) RegistrarMovimiento(ctx context.Context, req dto.RegistrarMovimientoRequest) (*dto.MovimientoResponse, error) {
	ctx, span := infra.StartSpan(ctx, "StockLedger.RegistrarMovimiento")
	defer span.End()

	m, err := validarMovimiento(req)
	if err != nil {
		infra.MovimientosRechazadosTotal.WithLabelValues(apierror.KindOf(err).String()).Inc()
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("idvariante", m.IDVariante),
		attribute.String("tipo", string(m.Tipo)),
		attribute.Int("cantidad", m.Cantidad),
	)

	if err := s.movimientos.Registrar(ctx, m); err != nil {
		if errors.Is(err, repository.ErrVarianteNoEncontrada) {
			err = apierror.NotFound("Variante no encontrada")
		} else {
			err = apierror.FromStorage(err)
		}
		span.RecordError(err)
		infra.MovimientosRechazadosTotal.WithLabelValues(apierror.KindOf(err).String()).Inc()
		return nil, err
	}

	infra.MovimientosRegistradosTotal.WithLabelValues(string(m.Tipo)).Inc()
	log.Info().
		Int64("idmovimiento", m.IDMovimiento).
		Int64("idvariante", m.IDVariante).
		Str("tipo", string(m.Tipo)).
		Int("cantidad", m.Cantidad).
		Msg("movimiento de stock registrado")

	s.notificar(ctx, m)
	return toMovimientoResponse(m), nil
}

// notificar runs the post-commit side effects. Failures are logged only; the
// movement is already durable.
func (s *stockLedger) notificar(ctx context.Context, m *model.MovimientoStock) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if s.eventos != nil {
		if err := s.eventos.MovimientoRegistrado(ctx, m.IDMovimiento, m.IDVariante, string(m.Tipo), m.Cantidad); err != nil {
			log.Warn().Err(err).Int64("idmovimiento", m.IDMovimiento).Msg("no se pudo publicar movimiento.registrado")
		}
	}
	if s.cola != nil && m.Tipo != model.TipoEntrada {
		if err := s.cola.EnqueueVerificarStock(ctx, m.IDVariante); err != nil {
			log.Warn().Err(err).Int64("idvariante", m.IDVariante).Msg("no se pudo encolar verificar_stock")
		}
	}
}

func validarMovimiento(req dto.RegistrarMovimientoRequest) (*model.MovimientoStock, error) {
	if req.IDVariante == nil {
		return nil, apierror.Validation("idvariante es obligatorio")
	}
	if *req.IDVariante <= 0 {
		return nil, apierror.Validation("idvariante debe ser un entero positivo")
	}
	if req.Tipo == nil || !model.TipoMovimiento(*req.Tipo).Valido() {
		return nil, apierror.Validation("tipo de movimiento inválido")
	}
	if req.Cantidad == nil || *req.Cantidad <= 0 || *req.Cantidad > math.MaxInt32 {
		return nil, apierror.Validation("cantidad debe ser un entero positivo")
	}
	return &model.MovimientoStock{
		IDVariante:     *req.IDVariante,
		Tipo:           model.TipoMovimiento(*req.Tipo),
		Cantidad:       *req.Cantidad,
		Descripcion:    req.Descripcion,
		ReferenciaID:   req.ReferenciaID,
		ReferenciaTipo: req.ReferenciaTipo,
		IDEmpleado:     req.IDEmpleado,
	}, nil
}

func (s *stockLedger) StockActual(ctx context.Context, idVariante int64) (int, error) {
	stock, err := s.StockActualLote(ctx, []int64{idVariante})
	if err != nil {
		return 0, err
	}
	return stock[idVariante], nil
}

func (s *stockLedger) StockActualLote(ctx context.Context, ids []int64) (map[int64]int, error) {
	ctx, span := infra.StartSpan(ctx, "StockLedger.StockActualLote")
	defer span.End()
	defer observeQuery("stock_lote", time.Now())

	unicos := dedup(ids)
	out := make(map[int64]int, len(unicos))
	if len(unicos) == 0 {
		return out, nil
	}

	sumas, err := s.movimientos.StockPorVariantes(ctx, unicos)
	if err != nil {
		return nil, apierror.FromStorage(err)
	}
	for _, id := range unicos {
		out[id] = sumas[id]
	}
	return out, nil
}

func (s *stockLedger) ListarVariantesConStock(ctx context.Context, ids []int64) ([]dto.VarianteStockResponse, error) {
	ctx, span := infra.StartSpan(ctx, "StockLedger.ListarVariantesConStock")
	defer span.End()

	return s.listarConStock(ctx, repository.VarianteFilter{IDs: dedup(ids)})
}

func (s *stockLedger) ObtenerAlertas(ctx context.Context) ([]dto.VarianteStockResponse, error) {
	filas, err := s.listarConStock(ctx, repository.VarianteFilter{SoloActivas: true})
	if err != nil {
		return nil, err
	}
	alertas := make([]dto.VarianteStockResponse, 0)
	for _, f := range filas {
		if f.BajoMinimo {
			alertas = append(alertas, f)
		}
	}
	return alertas, nil
}

func (s *stockLedger) listarConStock(ctx context.Context, filter repository.VarianteFilter) ([]dto.VarianteStockResponse, error) {
	variantes, err := s.variantes.List(ctx, filter)
	if err != nil {
		return nil, apierror.FromStorage(err)
	}

	ids := make([]int64, len(variantes))
	for i, v := range variantes {
		ids[i] = v.IDVariante
	}
	stock, err := s.StockActualLote(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.VarianteStockResponse, len(variantes))
	for i := range variantes {
		out[i] = toVarianteStockResponse(&variantes[i], stock[variantes[i].IDVariante])
	}
	return out, nil
}

func (s *stockLedger) ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	if filter.Tipo != "" && !model.TipoMovimiento(filter.Tipo).Valido() {
		return nil, apierror.Validation("tipo de movimiento inválido")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 500 {
		filter.Limit = 50
	}

	movs, total, err := s.movimientos.List(ctx, repository.MovimientoStockFilter{
		IDVariante: filter.IDVariante,
		Tipo:       filter.Tipo,
		Desde:      filter.Desde,
		Hasta:      filter.Hasta,
		Page:       filter.Page,
		Limit:      filter.Limit,
	})
	if err != nil {
		return nil, apierror.FromStorage(err)
	}

	data := make([]dto.MovimientoResponse, len(movs))
	for i := range movs {
		data[i] = *toMovimientoResponse(&movs[i])
	}
	return &dto.MovimientoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
	}, nil
}

func (s *stockLedger) EliminarVariante(ctx context.Context, idVariante int64) error {
	err := s.variantes.Delete(ctx, idVariante)
	switch {
	case err == nil:
		log.Info().Int64("idvariante", idVariante).Msg("variante eliminada")
		return nil
	case errors.Is(err, repository.ErrVarianteNoEncontrada):
		return apierror.NotFound("Variante no encontrada")
	case errors.Is(err, repository.ErrVarianteConMovimientos):
		return apierror.Conflict("La variante tiene movimientos de stock y no puede eliminarse")
	default:
		return apierror.FromStorage(err)
	}
}

// BajoMinimo reports whether stock calls for replenishment. A variant without
// a configured minimum only alerts once its stock goes negative.
func BajoMinimo(stock, minimo int) bool {
	if minimo <= 0 {
		return stock < 0
	}
	return stock <= minimo
}

func toMovimientoResponse(m *model.MovimientoStock) *dto.MovimientoResponse {
	return &dto.MovimientoResponse{
		IDMovimiento:   m.IDMovimiento,
		IDVariante:     m.IDVariante,
		Tipo:           string(m.Tipo),
		Cantidad:       m.Cantidad,
		Descripcion:    m.Descripcion,
		ReferenciaID:   m.ReferenciaID,
		ReferenciaTipo: m.ReferenciaTipo,
		IDEmpleado:     m.IDEmpleado,
		Fecha:          m.Fecha,
	}
}

func toVarianteStockResponse(v *model.ProductoVariante, stock int) dto.VarianteStockResponse {
	r := dto.VarianteStockResponse{
		IDVariante:   v.IDVariante,
		IDProducto:   v.IDProducto,
		SKU:          v.SKU,
		CodigoBarras: v.CodigoBarras,
		PrecioCompra: v.PrecioCompra,
		PrecioVenta:  v.PrecioVenta,
		StockActual:  stock,
		StockMinimo:  v.StockMinimo,
		BajoMinimo:   BajoMinimo(stock, v.StockMinimo),
		Estado:       v.Estado,
		Atributos:    toAtributos(v.Valores),
	}
	if v.Producto != nil {
		r.Producto = v.Producto.Nombre
	}
	return r
}

func toAtributos(valores []model.VarianteValor) []dto.AtributoValorResponse {
	out := make([]dto.AtributoValorResponse, 0, len(valores))
	for _, vv := range valores {
		a := dto.AtributoValorResponse{Valor: vv.Valor()}
		if vv.Atributo != nil {
			a.Nombre = vv.Atributo.Nombre
			a.Slug = vv.Atributo.Slug
		}
		out = append(out, a)
	}
	return out
}

func dedup(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func observeQuery(query string, start time.Time) {
	infra.StockQueryLatency.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

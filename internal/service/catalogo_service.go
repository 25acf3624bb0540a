package service

import (
	"context"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/apierror"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/dto"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/model"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/repository"
)

// CatalogoService serves the read-only catalog: categories and products with
// their variants and derived stock.
type CatalogoService interface {
	ListarCategorias(ctx context.Context) ([]dto.CategoriaResponse, error)
	ListarProductos(ctx context.Context) ([]dto.ProductoResponse, error)
}

type catalogoService struct {
	categorias repository.CategoriaRepository
	productos  repository.ProductoRepository
	ledger     StockLedger
}

func NewCatalogoService(categorias repository.CategoriaRepository, productos repository.ProductoRepository, ledger StockLedger) CatalogoService {
	return &catalogoService{categorias: categorias, productos: productos, ledger: ledger}
}

func (s *catalogoService) ListarCategorias(ctx context.Context) ([]dto.CategoriaResponse, error) {
	list, err := s.categorias.Listar(ctx)
	if err != nil {
		return nil, apierror.FromStorage(err)
	}
	resp := make([]dto.CategoriaResponse, len(list))
	for i, c := range list {
		resp[i] = dto.CategoriaResponse{
			IDCategoria: c.IDCategoria,
			Nombre:      c.Nombre,
			Slug:        c.Slug,
			Descripcion: c.Descripcion,
			Estado:      c.Estado,
		}
	}
	return resp, nil
}

func (s *catalogoService) ListarProductos(ctx context.Context) ([]dto.ProductoResponse, error) {
	productos, err := s.productos.ListConVariantes(ctx)
	if err != nil {
		return nil, apierror.FromStorage(err)
	}

	var ids []int64
	for _, p := range productos {
		for _, v := range p.Variantes {
			ids = append(ids, v.IDVariante)
		}
	}
	stock, err := s.ledger.StockActualLote(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.ProductoResponse, len(productos))
	for i := range productos {
		resp[i] = toProductoResponse(&productos[i], stock)
	}
	return resp, nil
}

func toProductoResponse(p *model.Producto, stock map[int64]int) dto.ProductoResponse {
	r := dto.ProductoResponse{
		IDProducto:   p.IDProducto,
		Nombre:       p.Nombre,
		Descripcion:  p.Descripcion,
		PrecioCompra: p.PrecioCompra,
		PrecioVenta:  p.PrecioVenta,
		Estado:       p.Estado,
		IDCategoria:  p.IDCategoria,
		IDProveedor:  p.IDProveedor,
		Variantes:    make([]dto.VarianteResponse, 0, len(p.Variantes)),
	}
	if p.Categoria != nil {
		r.Categoria = &p.Categoria.Nombre
	}
	if p.Proveedor != nil {
		r.Proveedor = &p.Proveedor.Nombre
	}
	for _, v := range p.Variantes {
		r.Variantes = append(r.Variantes, dto.VarianteResponse{
			IDVariante:   v.IDVariante,
			SKU:          v.SKU,
			CodigoBarras: v.CodigoBarras,
			PrecioCompra: v.PrecioCompra,
			PrecioVenta:  v.PrecioVenta,
			StockMinimo:  v.StockMinimo,
			StockActual:  stock[v.IDVariante],
			Atributos:    toAtributos(v.Valores),
		})
	}
	return r
}

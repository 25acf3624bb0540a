package repository

import "errors"

var (
	ErrVarianteNoEncontrada   = errors.New("variante no encontrada")
	ErrVarianteConMovimientos = errors.New("la variante tiene movimientos de stock")
	ErrUsuarioNoEncontrado    = errors.New("usuario no encontrado")
)

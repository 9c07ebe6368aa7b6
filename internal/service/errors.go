package service

import "errors"

var (
	ErrEmptyCart       = errors.New("tu carrito está vacío")
	ErrOutOfStock      = errors.New("producto sin stock")
	ErrInvalidQuantity = errors.New("cantidad inválida")
	ErrNoMorePages     = errors.New("no hay más productos")
)

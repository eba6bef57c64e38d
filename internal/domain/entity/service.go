package entity

import "github.com/shopspring/decimal"

// Service servicio del catálogo (mano de obra). Solo lectura desde el flujo de órdenes.
type Service struct {
	ID     string
	Name   string
	Price  decimal.Decimal // precio estándar
	Active bool
}

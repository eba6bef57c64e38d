package repository

// UnitOfWork repositorios atados a una misma transacción.
// Todo efecto multi-fila (stock, orden, líneas, movimientos) pasa por aquí y se confirma o revierte junto.
type UnitOfWork struct {
	Parts     PartRepository
	Movements InventoryMovementRepository
	Orders    ServiceOrderRepository
	Catalog   CatalogRepository
}

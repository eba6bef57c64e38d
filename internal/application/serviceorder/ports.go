package serviceorder

import (
	"context"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// TxRunner unidad atómica que abarca orden, líneas, piezas y movimientos.
type TxRunner interface {
	Run(ctx context.Context, fn func(uow repository.UnitOfWork) error) error
}

// OrderReader lectura de órdenes fuera de transacción.
type OrderReader interface {
	GetDetail(ctx context.Context, id string) (*entity.ServiceOrderDetail, error)
}

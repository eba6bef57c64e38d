package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

type state struct {
	customers    map[string]entity.Customer
	vehicles     map[string]entity.Vehicle
	mechanics    map[string]entity.Mechanic
	services     map[string]entity.Service
	parts        map[string]entity.Part
	orders       map[string]entity.ServiceOrder
	serviceLines map[string]map[string]entity.OrderServiceLine // orderID -> serviceID
	partLines    map[string]map[string]entity.OrderPartLine    // orderID -> partID
	movements    []entity.InventoryMovement
}

func newState() *state {
	return &state{
		customers:    map[string]entity.Customer{},
		vehicles:     map[string]entity.Vehicle{},
		mechanics:    map[string]entity.Mechanic{},
		services:     map[string]entity.Service{},
		parts:        map[string]entity.Part{},
		orders:       map[string]entity.ServiceOrder{},
		serviceLines: map[string]map[string]entity.OrderServiceLine{},
		partLines:    map[string]map[string]entity.OrderPartLine{},
	}
}

// clone copia profunda de los mapas; las entidades son valores y no se mutan en sitio.
func (s *state) clone() *state {
	c := &state{
		customers:    maps.Clone(s.customers),
		vehicles:     maps.Clone(s.vehicles),
		mechanics:    maps.Clone(s.mechanics),
		services:     maps.Clone(s.services),
		parts:        maps.Clone(s.parts),
		orders:       maps.Clone(s.orders),
		serviceLines: make(map[string]map[string]entity.OrderServiceLine, len(s.serviceLines)),
		partLines:    make(map[string]map[string]entity.OrderPartLine, len(s.partLines)),
		movements:    slices.Clone(s.movements),
	}
	for id, lines := range s.serviceLines {
		c.serviceLines[id] = maps.Clone(lines)
	}
	for id, lines := range s.partLines {
		c.partLines[id] = maps.Clone(lines)
	}
	return c
}

func (s *state) unitOfWork() repository.UnitOfWork {
	return repository.UnitOfWork{
		Parts:     partRepo{s},
		Movements: movementRepo{s},
		Orders:    orderRepo{s},
		Catalog:   catalogRepo{s},
	}
}

// Store almacenamiento en memoria para desarrollo y pruebas.
// Cada Run trabaja sobre una copia del estado y la publica solo si fn termina sin error;
// las transacciones se serializan con un único mutex.
type Store struct {
	mu sync.Mutex
	st *state
}

// New crea un store vacío.
func New() *Store {
	return &Store{st: newState()}
}

// Run implementa el TxRunner de la aplicación.
func (s *Store) Run(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return &domain.StorageError{Cause: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(work.unitOfWork()); err != nil {
		if domain.IsDomainError(err) {
			return err
		}
		return &domain.StorageError{Cause: err}
	}
	s.st = work
	return nil
}

func (s *Store) locked(fn func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.st)
}

// PutCustomer registra o reemplaza un cliente.
func (s *Store) PutCustomer(c entity.Customer) { s.locked(func(st *state) { st.customers[c.ID] = c }) }

// PutVehicle registra o reemplaza un vehículo.
func (s *Store) PutVehicle(v entity.Vehicle) { s.locked(func(st *state) { st.vehicles[v.ID] = v }) }

// PutMechanic registra o reemplaza un mecánico.
func (s *Store) PutMechanic(m entity.Mechanic) { s.locked(func(st *state) { st.mechanics[m.ID] = m }) }

// PutService registra o reemplaza un servicio del catálogo.
func (s *Store) PutService(svc entity.Service) { s.locked(func(st *state) { st.services[svc.ID] = svc }) }

// PutPart registra o reemplaza una pieza.
func (s *Store) PutPart(p entity.Part) { s.locked(func(st *state) { st.parts[p.ID] = p }) }

// PartQuantity existencia actual de una pieza (0 si no existe).
func (s *Store) PartQuantity(id string) int {
	var q int
	s.locked(func(st *state) { q = st.parts[id].Quantity })
	return q
}

// GetDetail implementa la lectura de órdenes fuera de transacción.
func (s *Store) GetDetail(ctx context.Context, id string) (*entity.ServiceOrderDetail, error) {
	var (
		out *entity.ServiceOrderDetail
		err error
	)
	s.locked(func(st *state) { out, err = orderRepo{st}.GetDetail(ctx, id) })
	return out, err
}

// Parts repositorio de piezas fuera de transacción.
func (s *Store) Parts() repository.PartRepository { return lockedParts{s} }

// Movements repositorio de movimientos fuera de transacción.
func (s *Store) Movements() repository.InventoryMovementRepository { return lockedMovements{s} }

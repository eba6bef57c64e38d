package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// IDs fijos de los datos de demostración.
const (
	DemoCustomerID = "8f0c6f0e-3d55-4b8e-9a51-0c6a4d1f0001"
	DemoVehicleID  = "8f0c6f0e-3d55-4b8e-9a51-0c6a4d1f0002"
	DemoMechanicID = "8f0c6f0e-3d55-4b8e-9a51-0c6a4d1f0003"
	DemoServiceID  = "8f0c6f0e-3d55-4b8e-9a51-0c6a4d1f0004"
	DemoPartID     = "8f0c6f0e-3d55-4b8e-9a51-0c6a4d1f0005"
)

// NewSeeded store con un cliente, vehículo, mecánico, servicio y pieza de demostración
// (STORAGE_DRIVER=memory).
func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()
	s.PutCustomer(entity.Customer{ID: DemoCustomerID, Name: "Cliente Demo", Email: "demo@taller.local", CreatedAt: now})
	s.PutVehicle(entity.Vehicle{ID: DemoVehicleID, CustomerID: DemoCustomerID, Plate: "ABC123", Model: "Sedán 2018"})
	s.PutMechanic(entity.Mechanic{ID: DemoMechanicID, Name: "Mecánico Demo"})
	s.PutService(entity.Service{ID: DemoServiceID, Name: "Cambio de aceite", Price: decimal.NewFromInt(150), Active: true})
	s.PutPart(entity.Part{
		ID:          DemoPartID,
		Name:        "Filtro de aceite",
		UnitCost:    decimal.NewFromInt(30),
		SalePrice:   decimal.NewFromInt(50),
		Quantity:    100,
		MinQuantity: 10,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return s
}

package entity

import "time"

// Customer representa un cliente del taller.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// Vehicle vehículo de un cliente.
type Vehicle struct {
	ID         string
	CustomerID string
	Plate      string
	Model      string
}

// Mechanic mecánico que puede tomar órdenes de servicio.
type Mechanic struct {
	ID   string
	Name string
}

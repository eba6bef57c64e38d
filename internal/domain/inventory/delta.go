package inventory

import (
	"math"
	"sort"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// MaxStock existencia máxima de una pieza y magnitud máxima de un delta (columna INTEGER).
const MaxStock = math.MaxInt32

// Delta cambio de existencias con signo a aplicar sobre una pieza.
// Negativo: sale stock (consumo en orden). Positivo: regresa o entra stock.
type Delta struct {
	PartID   string
	Quantity int
	OrderID  *string
	Type     string // entity.MovementTypeIN/OUT/ADJUST; vacío = derivado del signo
	Reason   string
	ActorID  string
}

// MovementType devuelve el tipo explícito o lo deriva del signo.
func (d Delta) MovementType() string {
	if d.Type != "" {
		return d.Type
	}
	if d.Quantity < 0 {
		return entity.MovementTypeOUT
	}
	return entity.MovementTypeIN
}

// Normalize agrupa deltas por pieza, descarta los netos en cero y ordena por PartID.
// El orden ascendente fija el orden de bloqueo de filas entre transacciones concurrentes.
func Normalize(deltas []Delta) []Delta {
	byPart := make(map[string]int, len(deltas))
	first := make(map[string]Delta, len(deltas))
	for _, d := range deltas {
		if _, ok := first[d.PartID]; !ok {
			first[d.PartID] = d
		}
		byPart[d.PartID] += d.Quantity
	}
	out := make([]Delta, 0, len(byPart))
	for partID, qty := range byPart {
		if qty == 0 {
			continue
		}
		d := first[partID]
		d.Quantity = qty
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartID < out[j].PartID })
	return out
}

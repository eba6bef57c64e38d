package serviceorder

import (
	"fmt"
	"strings"
)

// Role papel fijo de un estado dentro del ciclo de vida; las etiquetas visibles son configurables.
type Role int

const (
	RoleWaiting Role = iota
	RoleInProgress
	RoleCompleted
	RolePaid
)

// transitions tabla de transiciones permitidas por papel.
var transitions = map[Role][]Role{
	RoleWaiting:    {RoleInProgress, RoleCompleted},
	RoleInProgress: {RoleWaiting, RoleCompleted},
	RoleCompleted:  {RoleInProgress, RolePaid},
	RolePaid:       {},
}

// StatusSet etiquetas de estado de la instalación (p. ej. WAITING, IN_PROGRESS, COMPLETED, PAID).
type StatusSet struct {
	Waiting    string
	InProgress string
	Completed  string
	Paid       string
}

// DefaultStatusSet etiquetas por defecto.
func DefaultStatusSet() StatusSet {
	return StatusSet{
		Waiting:    "WAITING",
		InProgress: "IN_PROGRESS",
		Completed:  "COMPLETED",
		Paid:       "PAID",
	}
}

// Validate exige etiquetas no vacías y distintas entre sí.
func (s StatusSet) Validate() error {
	seen := make(map[string]bool, 4)
	for _, l := range []string{s.Waiting, s.InProgress, s.Completed, s.Paid} {
		l = strings.TrimSpace(l)
		if l == "" {
			return fmt.Errorf("etiqueta de estado vacía")
		}
		if seen[l] {
			return fmt.Errorf("etiqueta de estado repetida: %s", l)
		}
		seen[l] = true
	}
	return nil
}

// RoleOf devuelve el papel de una etiqueta.
func (s StatusSet) RoleOf(label string) (Role, bool) {
	switch label {
	case s.Waiting:
		return RoleWaiting, true
	case s.InProgress:
		return RoleInProgress, true
	case s.Completed:
		return RoleCompleted, true
	case s.Paid:
		return RolePaid, true
	}
	return 0, false
}

// Known indica si la etiqueta pertenece al conjunto.
func (s StatusSet) Known(label string) bool {
	_, ok := s.RoleOf(label)
	return ok
}

// CanTransition indica si se permite pasar de from a to. Mismo estado siempre es válido.
func (s StatusSet) CanTransition(from, to string) bool {
	if from == to {
		return s.Known(from)
	}
	rf, ok := s.RoleOf(from)
	if !ok {
		return false
	}
	rt, ok := s.RoleOf(to)
	if !ok {
		return false
	}
	for _, r := range transitions[rf] {
		if r == rt {
			return true
		}
	}
	return false
}

// IsInProgress estado "en proceso" (exclusivo por mecánico).
func (s StatusSet) IsInProgress(label string) bool { return label == s.InProgress }

// RequiresPayment estados terminales que exigen forma de pago.
func (s StatusSet) RequiresPayment(label string) bool {
	return label == s.Completed || label == s.Paid
}

// IsFinal la orden ya no admite cambios (solo cancelación).
func (s StatusSet) IsFinal(label string) bool { return label == s.Paid }

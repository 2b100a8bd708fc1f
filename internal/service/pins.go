package service

import "crypto/subtle"

// AdminPins holds the two shared administrative secrets. Acciones authorizes
// write-offs, undo and manual start numbers; Override authorizes a forced sale.
type AdminPins struct {
	Acciones string
	Override string
}

func (p AdminPins) AccionesValido(pin string) bool { return pinIgual(p.Acciones, pin) }

func (p AdminPins) OverrideValido(pin string) bool { return pinIgual(p.Override, pin) }

// An unset PIN never matches, so an empty config cannot be satisfied by an empty input.
func pinIgual(esperado, pin string) bool {
	if esperado == "" || pin == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(esperado), []byte(pin)) == 1
}

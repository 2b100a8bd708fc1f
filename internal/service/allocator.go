package service

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// maxNumero keeps generated codes at four digits.
const maxNumero = 9999

// maxSecuenciaFunc returns the highest numeric suffix already used after prefijo.
type maxSecuenciaFunc func(tx *gorm.DB, prefijo string) (int, error)

// allocator hands out sequential, zero-padded numbers scoped to a code.
// Collision safety comes from the caller's transaction plus the unique key on
// insert; a manual start bypasses the scan and is gated by the actions PIN.
type allocator struct {
	pins AdminPins
}

// reservar returns the first number of a run of cantidad codes under codigo.
func (a allocator) reservar(tx *gorm.DB, maxFn maxSecuenciaFunc, codigo string, cantidad int, inicio *int, pin string) (int, error) {
	var desde int
	if inicio != nil {
		if !a.pins.AccionesValido(pin) {
			return 0, unauthorized("PIN admin invalido para definir Nro inicial manual")
		}
		if *inicio < 1 || *inicio > maxNumero {
			return 0, invalidArgument("Nro inicial invalido: %d", *inicio)
		}
		desde = *inicio
	} else {
		max, err := maxFn(tx, codigo+"-")
		if err != nil {
			return 0, err
		}
		desde = max + 1
	}
	if desde+cantidad-1 > maxNumero {
		return 0, invalidArgument("El rango %s..%s supera el maximo de %d",
			formatearCodigo(codigo, desde), formatearCodigo(codigo, desde+cantidad-1), maxNumero)
	}
	return desde, nil
}

func formatearCodigo(codigo string, n int) string {
	return strings.ToUpper(fmt.Sprintf("%s-%04d", codigo, n))
}

// codigoLote builds DIA-PREFIJO, or PREFIJO alone when no day code is given.
func codigoLote(dia, prefijo string) string {
	dia, prefijo = normalizar(dia), normalizar(prefijo)
	if dia == "" {
		return prefijo
	}
	return dia + "-" + prefijo
}

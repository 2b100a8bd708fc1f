package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cipriano/internal/dto"
	"cipriano/internal/model"
	"cipriano/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ScanInput is one QR read from a station.
type ScanInput struct {
	PizzaID      string
	Modo         string
	Actor        Actor
	SaborSiVacio string
	OverridePin  string
	MeseroCodigo string
}

// ScanService applies status transitions and keeps the audit trail.
// Every operation locks the pizza row and writes pizza plus event in one transaction.
type ScanService interface {
	ProcesarEscaneo(ctx context.Context, in ScanInput) (*dto.EscaneoResponse, error)
	CambiarEstadoAdmin(ctx context.Context, pizzaID, estado string, actor Actor, pin string) (*dto.EscaneoResponse, error)
	DeshacerUltimo(ctx context.Context, actor Actor, pin string) (*dto.EscaneoResponse, error)
	VerificarPin(pin string) error
	// ConsultarPizza returns the current state of a pizza without locking it.
	ConsultarPizza(ctx context.Context, pizzaID string) (*dto.PizzaResponse, error)
}

type scanService struct {
	pizzas  repository.PizzaRepository
	eventos repository.EventoRepository
	meseros repository.MeseroRepository
	pins    AdminPins
	now     func() time.Time
}

func NewScanService(
	pizzas repository.PizzaRepository,
	eventos repository.EventoRepository,
	meseros repository.MeseroRepository,
	pins AdminPins,
) ScanService {
	return &scanService{pizzas: pizzas, eventos: eventos, meseros: meseros, pins: pins, now: time.Now}
}

func (s *scanService) ProcesarEscaneo(ctx context.Context, in ScanInput) (*dto.EscaneoResponse, error) {
	id := normalizar(in.PizzaID)
	modo := normalizar(in.Modo)
	if id == "" {
		return nil, invalidArgument("ID de pizza requerido")
	}
	if modo != model.ModoCocina && modo != model.ModoVentas {
		return nil, invalidArgument("Modo invalido: %s", in.Modo)
	}

	var pizza *model.Pizza
	var evento *model.EventoEscaneo
	err := runTx(ctx, s.pizzas.DB(), func(tx *gorm.DB) error {
		p, err := s.lockPizza(tx, id)
		if err != nil {
			return err
		}
		desde := p.Estado
		var nota string

		switch modo {
		case model.ModoCocina:
			switch p.Estado {
			case model.EstadoPreparacion:
				p.Estado = model.EstadoLista
			case model.EstadoLista:
				// re-scan: recorded, nothing changes
			default:
				return invalidTransition("No se puede marcar LISTA una pizza en estado %s", p.Estado)
			}
		case model.ModoVentas:
			if p.Estado != model.EstadoLista {
				if !s.pins.OverrideValido(in.OverridePin) {
					return invalidTransition("Solo se puede vender una pizza LISTA (estado actual: %s)", p.Estado)
				}
				nota = "override"
			}
			p.Estado = model.EstadoVendida
		}

		var mesero *model.Mesero
		if codigo := normalizar(in.MeseroCodigo); modo == model.ModoVentas && codigo != "" {
			mesero, err = s.meseros.FindActivoByCodigoTx(tx, codigo)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalidArgument("Mesero no encontrado: %s", codigo)
			}
			if err != nil {
				return err
			}
		}

		if sabor := normalizar(in.SaborSiVacio); sabor != "" && p.Sabor == "" {
			p.Sabor = sabor
		}
		if p.Estado != desde {
			p.MarcarTransicion(p.Estado, in.Actor.Nombre, s.now())
		}
		if err := s.pizzas.UpdateTx(tx, p); err != nil {
			return err
		}

		e := &model.EventoEscaneo{
			PizzaID:     p.ID,
			Modo:        modo,
			ActorNombre: in.Actor.Nombre,
			ActorRol:    in.Actor.Rol,
			EstadoDesde: desde,
			EstadoHasta: p.Estado,
			Nota:        nota,
		}
		if mesero != nil {
			e.MeseroCodigo, e.MeseroNombre = mesero.Codigo, mesero.Nombre
		}
		if err := s.eventos.CreateTx(tx, e); err != nil {
			return err
		}
		pizza, evento = p, e
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("pizza", pizza.ID).
		Str("modo", modo).
		Str("desde", evento.EstadoDesde).
		Str("hasta", evento.EstadoHasta).
		Str("actor", in.Actor.Nombre).
		Bool("override", evento.Nota == "override").
		Msg("escaneo registrado")

	return escaneoResponse(mensajeEscaneo(pizza, evento), pizza, evento), nil
}

func (s *scanService) CambiarEstadoAdmin(ctx context.Context, pizzaID, estado string, actor Actor, pin string) (*dto.EscaneoResponse, error) {
	if !s.pins.AccionesValido(pin) {
		log.Warn().Str("actor", actor.Nombre).Msg("PIN admin invalido en cambio de estado")
		return nil, unauthorized("PIN admin invalido")
	}
	id := normalizar(pizzaID)
	estado = normalizar(estado)
	if id == "" {
		return nil, invalidArgument("ID de pizza requerido")
	}
	if estado != model.EstadoCancelada && estado != model.EstadoMerma {
		return nil, invalidArgument("Estado admin invalido: %s (use CANCELADA o MERMA)", estado)
	}

	var pizza *model.Pizza
	var evento *model.EventoEscaneo
	err := runTx(ctx, s.pizzas.DB(), func(tx *gorm.DB) error {
		p, err := s.lockPizza(tx, id)
		if err != nil {
			return err
		}
		if p.Estado != model.EstadoPreparacion && p.Estado != model.EstadoLista {
			return invalidTransition("Solo se puede dar de baja una pizza en PREPARACION o LISTA (estado actual: %s)", p.Estado)
		}
		desde := p.Estado
		p.Estado = estado
		p.MarcarTransicion(estado, actor.Nombre, s.now())
		if err := s.pizzas.UpdateTx(tx, p); err != nil {
			return err
		}
		e := &model.EventoEscaneo{
			PizzaID:     p.ID,
			Modo:        model.ModoAdmin,
			ActorNombre: actor.Nombre,
			ActorRol:    actor.Rol,
			EstadoDesde: desde,
			EstadoHasta: estado,
		}
		if err := s.eventos.CreateTx(tx, e); err != nil {
			return err
		}
		pizza, evento = p, e
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("pizza", pizza.ID).
		Str("desde", evento.EstadoDesde).
		Str("hasta", estado).
		Str("actor", actor.Nombre).
		Msg("baja administrativa")

	return escaneoResponse(fmt.Sprintf("%s marcada como %s", pizza.ID, estado), pizza, evento), nil
}

// DeshacerUltimo reverts the most recent event that is neither undone nor an
// undo itself, and records the reversal as a new UNDO event.
func (s *scanService) DeshacerUltimo(ctx context.Context, actor Actor, pin string) (*dto.EscaneoResponse, error) {
	if !s.pins.AccionesValido(pin) {
		log.Warn().Str("actor", actor.Nombre).Msg("PIN admin invalido en deshacer")
		return nil, unauthorized("PIN admin invalido")
	}

	var pizza *model.Pizza
	var evento, deshecho *model.EventoEscaneo
	err := runTx(ctx, s.pizzas.DB(), func(tx *gorm.DB) error {
		ultimo, err := s.eventos.UltimoPendienteForUpdateTx(tx)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("No hay eventos para deshacer")
		}
		if err != nil {
			return err
		}
		p, err := s.lockPizza(tx, ultimo.PizzaID)
		if err != nil {
			return err
		}
		if p.Estado != ultimo.EstadoHasta {
			return invalidTransition("La pizza %s esta en %s pero el evento #%d la dejo en %s; reintente",
				p.ID, p.Estado, ultimo.ID, ultimo.EstadoHasta)
		}

		desde := p.Estado
		if ultimo.EstadoDesde != ultimo.EstadoHasta {
			p.LimpiarTransicion(ultimo.EstadoHasta)
			p.Estado = ultimo.EstadoDesde
		}
		if err := s.pizzas.UpdateTx(tx, p); err != nil {
			return err
		}
		if err := s.eventos.MarcarDeshechoTx(tx, ultimo.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalidTransition("El evento #%d ya fue deshecho", ultimo.ID)
			}
			return err
		}
		ultimo.Deshecho = true

		e := &model.EventoEscaneo{
			PizzaID:     p.ID,
			Modo:        model.ModoUndo,
			ActorNombre: actor.Nombre,
			ActorRol:    actor.Rol,
			EstadoDesde: desde,
			EstadoHasta: p.Estado,
			Nota:        fmt.Sprintf("Deshace evento #%d", ultimo.ID),
		}
		if err := s.eventos.CreateTx(tx, e); err != nil {
			return err
		}
		pizza, evento, deshecho = p, e, ultimo
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint64("evento", deshecho.ID).
		Str("pizza", pizza.ID).
		Str("modo", deshecho.Modo).
		Str("restaurado", pizza.Estado).
		Str("actor", actor.Nombre).
		Msg("evento deshecho")

	msg := fmt.Sprintf("Deshecho evento #%d (%s): %s vuelve a %s", deshecho.ID, deshecho.Modo, pizza.ID, pizza.Estado)
	return escaneoResponse(msg, pizza, evento), nil
}

func (s *scanService) VerificarPin(pin string) error {
	if !s.pins.AccionesValido(pin) {
		return unauthorized("PIN admin invalido")
	}
	return nil
}

func (s *scanService) ConsultarPizza(ctx context.Context, pizzaID string) (*dto.PizzaResponse, error) {
	id := normalizar(pizzaID)
	p, err := s.pizzas.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("ID no encontrado: %s", id)
	}
	if err != nil {
		return nil, err
	}
	resp := pizzaToResponse(p)
	return &resp, nil
}

func (s *scanService) lockPizza(tx *gorm.DB, id string) (*model.Pizza, error) {
	p, err := s.pizzas.FindByIDForUpdateTx(tx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("ID no encontrado: %s", id)
	}
	return p, err
}

func mensajeEscaneo(p *model.Pizza, e *model.EventoEscaneo) string {
	msg := fmt.Sprintf("%s: %s -> %s", p.ID, e.EstadoDesde, e.EstadoHasta)
	switch {
	case e.EstadoDesde == e.EstadoHasta:
		msg = fmt.Sprintf("%s ya estaba %s", p.ID, p.Estado)
	case e.Nota == "override":
		msg += " (override)"
	}
	if e.MeseroNombre != "" {
		msg += " - mesero " + e.MeseroNombre
	}
	return msg
}

const formatoFecha = "2006-01-02T15:04:05Z07:00"

func escaneoResponse(msg string, p *model.Pizza, e *model.EventoEscaneo) *dto.EscaneoResponse {
	return &dto.EscaneoResponse{
		Mensaje: msg,
		Pizza:   pizzaToResponse(p),
		Evento:  eventoToResponse(e),
	}
}

func pizzaToResponse(p *model.Pizza) dto.PizzaResponse {
	r := dto.PizzaResponse{
		ID:         p.ID,
		Sabor:      p.Sabor,
		Tamano:     p.Tamano,
		Precio:     p.Precio.StringFixed(2),
		Estado:     p.Estado,
		CreatedAt:  p.CreatedAt.Format(formatoFecha),
		ReadyAt:    formatearHora(p.ReadyAt),
		ReadyBy:    p.ReadyBy,
		SoldAt:     formatearHora(p.SoldAt),
		SoldBy:     p.SoldBy,
		CanceledAt: formatearHora(p.CanceledAt),
		CanceledBy: p.CanceledBy,
	}
	if p.Lote != nil {
		r.Lote = p.Lote.Codigo
	} else if i := strings.LastIndex(p.ID, "-"); i > 0 {
		r.Lote = p.ID[:i]
	}
	return r
}

func eventoToResponse(e *model.EventoEscaneo) dto.EventoResponse {
	r := dto.EventoResponse{
		ID:           e.ID,
		PizzaID:      e.PizzaID,
		Modo:         e.Modo,
		ActorNombre:  e.ActorNombre,
		ActorRol:     e.ActorRol,
		EstadoDesde:  e.EstadoDesde,
		EstadoHasta:  e.EstadoHasta,
		MeseroCodigo: e.MeseroCodigo,
		MeseroNombre: e.MeseroNombre,
		Nota:         e.Nota,
		Deshecho:     e.Deshecho,
		CreatedAt:    e.CreatedAt.Format(formatoFecha),
	}
	if e.Pizza != nil {
		r.Sabor = e.Pizza.Sabor
	}
	return r
}

func formatearHora(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(formatoFecha)
	return &s
}

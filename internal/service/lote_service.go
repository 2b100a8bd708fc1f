package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cipriano/internal/dto"
	"cipriano/internal/model"
	"cipriano/internal/repository"
	"cipriano/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CrearLoteInput describes a batch of pizzas to register before printing labels.
type CrearLoteInput struct {
	CodigoDia     string
	PrefijoSabor  string
	Sabor         string
	Tamano        string
	Cantidad      int
	Precio        decimal.Decimal
	Actor         string
	NumeroInicial *int
	AdminPin      string
	Notas         string
}

type LoteService interface {
	CrearLote(ctx context.Context, in CrearLoteInput) (*dto.LoteGeneradoResponse, error)
	// PizzasParaEtiquetas returns the pizzas of a lote, optionally within [desde, hasta].
	PizzasParaEtiquetas(ctx context.Context, codigo, desde, hasta string) ([]model.Pizza, error)
}

type loteService struct {
	lotes      repository.LoteRepository
	pizzas     repository.PizzaRepository
	alloc      allocator
	dispatcher *worker.Dispatcher
	now        func() time.Time
}

func NewLoteService(
	lotes repository.LoteRepository,
	pizzas repository.PizzaRepository,
	pins AdminPins,
	dispatcher *worker.Dispatcher,
) LoteService {
	return &loteService{
		lotes:      lotes,
		pizzas:     pizzas,
		alloc:      allocator{pins: pins},
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// CrearLote creates every pizza of the run or none of them.
func (s *loteService) CrearLote(ctx context.Context, in CrearLoteInput) (*dto.LoteGeneradoResponse, error) {
	codigo := codigoLote(in.CodigoDia, in.PrefijoSabor)
	if normalizar(in.PrefijoSabor) == "" {
		return nil, invalidArgument("Prefijo de sabor requerido")
	}
	if in.Cantidad < 1 {
		return nil, invalidArgument("Cantidad invalida: %d", in.Cantidad)
	}
	if in.Precio.IsNegative() {
		return nil, invalidArgument("Precio invalido: %s", in.Precio.String())
	}
	sabor := normalizar(in.Sabor)
	if sabor == "" {
		sabor = normalizar(in.PrefijoSabor)
	}

	var desde int
	err := runTx(ctx, s.pizzas.DB(), func(tx *gorm.DB) error {
		lote, err := s.lotes.FindOrCreateForUpdateTx(tx, &model.Lote{
			Codigo:    codigo,
			Dia:       s.now(),
			Notas:     in.Notas,
			CreatedBy: in.Actor,
		})
		if err != nil {
			return err
		}
		desde, err = s.alloc.reservar(tx, s.pizzas.MaxSecuenciaTx, codigo, in.Cantidad, in.NumeroInicial, in.AdminPin)
		if err != nil {
			return err
		}

		pizzas := make([]model.Pizza, in.Cantidad)
		for i := range pizzas {
			pizzas[i] = model.Pizza{
				ID:        formatearCodigo(codigo, desde+i),
				Sabor:     sabor,
				Tamano:    in.Tamano,
				Precio:    in.Precio,
				Estado:    model.EstadoPreparacion,
				LoteID:    &lote.ID,
				CreatedBy: in.Actor,
			}
		}
		if err := s.pizzas.CreateManyTx(tx, pizzas); err != nil {
			if isDuplicate(err) {
				return invalidArgument("Ya existen IDs en el rango %s..%s",
					pizzas[0].ID, pizzas[len(pizzas)-1].ID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	primero := formatearCodigo(codigo, desde)
	ultimo := formatearCodigo(codigo, desde+in.Cantidad-1)
	log.Info().
		Str("lote", codigo).
		Int("cantidad", in.Cantidad).
		Str("desde", primero).
		Str("hasta", ultimo).
		Bool("manual", in.NumeroInicial != nil).
		Str("actor", in.Actor).
		Msg("lote generado")

	if s.dispatcher != nil {
		job := worker.EtiquetasJobPayload{Lote: codigo, Desde: primero, Hasta: ultimo}
		if err := s.dispatcher.EnqueueEtiquetas(ctx, job); err != nil {
			log.Error().Err(err).Str("lote", codigo).Msg("no se pudo encolar etiquetas")
		}
	}

	return &dto.LoteGeneradoResponse{
		Lote:          codigo,
		Cantidad:      in.Cantidad,
		PrimerID:      primero,
		UltimoID:      ultimo,
		EtiquetasURL:  fmt.Sprintf("/v1/lotes/%s/etiquetas.pdf?desde=%s&hasta=%s", codigo, primero, ultimo),
		Sabor:         sabor,
		Precio:        in.Precio.StringFixed(2),
		NumeroInicial: desde,
	}, nil
}

func (s *loteService) PizzasParaEtiquetas(ctx context.Context, codigo, desde, hasta string) ([]model.Pizza, error) {
	codigo = normalizar(codigo)
	if _, err := s.lotes.FindByCodigo(ctx, codigo); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Lote no encontrado: %s", codigo)
		}
		return nil, err
	}
	pizzas, err := s.pizzas.ListByLote(ctx, codigo, normalizar(desde), normalizar(hasta))
	if err != nil {
		return nil, err
	}
	if len(pizzas) == 0 {
		return nil, notFound("Lote %s sin pizzas en el rango pedido", codigo)
	}
	return pizzas, nil
}

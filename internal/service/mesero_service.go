package service

import (
	"context"
	"strings"

	"cipriano/internal/dto"
	"cipriano/internal/model"
	"cipriano/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// prefijoMesero scopes waiter codes: MES-0001, MES-0002...
const prefijoMesero = "MES"

type MeseroService interface {
	CrearMesero(ctx context.Context, nombre, actor string) (*dto.MeseroResponse, error)
	Listar(ctx context.Context) ([]dto.MeseroResponse, error)
	// ParaEtiquetas returns the active waiters with the given codes, or all of
	// them when codigos is empty.
	ParaEtiquetas(ctx context.Context, codigos []string) ([]model.Mesero, error)
}

type meseroService struct {
	repo  repository.MeseroRepository
	alloc allocator
}

func NewMeseroService(repo repository.MeseroRepository) MeseroService {
	return &meseroService{repo: repo}
}

func (s *meseroService) CrearMesero(ctx context.Context, nombre, actor string) (*dto.MeseroResponse, error) {
	nombre = strings.Join(strings.Fields(nombre), " ")
	if len(nombre) < 2 {
		return nil, invalidArgument("Nombre de mesero invalido")
	}

	m := &model.Mesero{Nombre: nombre, Activo: true, CreatedBy: actor}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		n, err := s.alloc.reservar(tx, s.repo.MaxSecuenciaTx, prefijoMesero, 1, nil, "")
		if err != nil {
			return err
		}
		m.Codigo = formatearCodigo(prefijoMesero, n)
		if err := s.repo.CreateTx(tx, m); err != nil {
			if isDuplicate(err) {
				return invalidArgument("Codigo de mesero ya existente: %s", m.Codigo)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("codigo", m.Codigo).Str("nombre", m.Nombre).Str("actor", actor).Msg("mesero creado")
	resp := meseroToResponse(m)
	return &resp, nil
}

func (s *meseroService) Listar(ctx context.Context) ([]dto.MeseroResponse, error) {
	meseros, err := s.repo.ListActivos(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.MeseroResponse, len(meseros))
	for i := range meseros {
		resp[i] = meseroToResponse(&meseros[i])
	}
	return resp, nil
}

func (s *meseroService) ParaEtiquetas(ctx context.Context, codigos []string) ([]model.Mesero, error) {
	var limpios []string
	for _, c := range codigos {
		for _, part := range strings.Split(c, ",") {
			if part = normalizar(part); part != "" {
				limpios = append(limpios, part)
			}
		}
	}
	var (
		meseros []model.Mesero
		err     error
	)
	if len(limpios) == 0 {
		meseros, err = s.repo.ListActivos(ctx)
	} else {
		meseros, err = s.repo.ListByCodigos(ctx, limpios)
	}
	if err != nil {
		return nil, err
	}
	if len(meseros) == 0 {
		return nil, notFound("No hay meseros para imprimir")
	}
	return meseros, nil
}

func meseroToResponse(m *model.Mesero) dto.MeseroResponse {
	return dto.MeseroResponse{
		ID:     m.ID.String(),
		Codigo: m.Codigo,
		Nombre: m.Nombre,
		Activo: m.Activo,
	}
}

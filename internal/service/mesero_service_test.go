package service_test

import (
	"context"
	"testing"

	"cipriano/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrearMesero_CodigosSecuenciales(t *testing.T) {
	st := newMemStore()
	svc := service.NewMeseroService(&fakeMeseroRepo{st: st})
	ctx := context.Background()

	a, err := svc.CrearMesero(ctx, "  Carla   Gomez ", "lotes")
	require.NoError(t, err)
	b, err := svc.CrearMesero(ctx, "Juan", "lotes")
	require.NoError(t, err)

	assert.Equal(t, "MES-0001", a.Codigo)
	assert.Equal(t, "Carla Gomez", a.Nombre)
	assert.True(t, a.Activo)
	assert.Equal(t, "MES-0002", b.Codigo)
}

func TestCrearMesero_ContinuaDesdeElMaximo(t *testing.T) {
	st := newMemStore()
	st.seedMesero("MES-0007", "Existente")
	svc := service.NewMeseroService(&fakeMeseroRepo{st: st})

	m, err := svc.CrearMesero(context.Background(), "Nuevo", "admin")
	require.NoError(t, err)
	assert.Equal(t, "MES-0008", m.Codigo)
}

func TestCrearMesero_NombreInvalido(t *testing.T) {
	st := newMemStore()
	svc := service.NewMeseroService(&fakeMeseroRepo{st: st})

	for _, nombre := range []string{"", "   ", "x"} {
		_, err := svc.CrearMesero(context.Background(), nombre, "admin")
		assert.ErrorIs(t, err, service.ErrInvalidArgument, "nombre %q", nombre)
	}
	assert.Empty(t, st.meseros)
}

func TestListarMeseros_SoloActivos(t *testing.T) {
	st := newMemStore()
	st.seedMesero("MES-0001", "Carla")
	st.seedMesero("MES-0002", "Juan").Activo = false
	svc := service.NewMeseroService(&fakeMeseroRepo{st: st})

	list, err := svc.Listar(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "MES-0001", list[0].Codigo)
}

func TestMeserosParaEtiquetas(t *testing.T) {
	st := newMemStore()
	st.seedMesero("MES-0001", "Carla")
	st.seedMesero("MES-0002", "Juan")
	st.seedMesero("MES-0003", "Ana")
	svc := service.NewMeseroService(&fakeMeseroRepo{st: st})
	ctx := context.Background()

	todos, err := svc.ParaEtiquetas(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, todos, 3)

	algunos, err := svc.ParaEtiquetas(ctx, []string{"mes-0001, MES-0003", ""})
	require.NoError(t, err)
	assert.Len(t, algunos, 2)

	_, err = svc.ParaEtiquetas(ctx, []string{"MES-0099"})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

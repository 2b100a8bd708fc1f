package service

import (
	"context"
	"strings"
	"time"

	"cipriano/internal/dto"
	"cipriano/internal/model"
	"cipriano/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	pageSizeMin = 5
	pageSizeMax = 30
	// filtroTodos disables the mode or status filter.
	filtroTodos = "ALL"
)

type DashboardService interface {
	Resumen(ctx context.Context, f dto.DashboardFilter) (*dto.DashboardResponse, error)
	ExportarVentas(ctx context.Context, f dto.VentasExportFilter) (*dto.VentasExport, error)
}

type dashboardService struct {
	pizzas  repository.PizzaRepository
	eventos repository.EventoRepository
}

func NewDashboardService(pizzas repository.PizzaRepository, eventos repository.EventoRepository) DashboardService {
	return &dashboardService{pizzas: pizzas, eventos: eventos}
}

func (s *dashboardService) Resumen(ctx context.Context, f dto.DashboardFilter) (*dto.DashboardResponse, error) {
	desde, hasta, err := parseRango(f.Desde, f.Hasta)
	if err != nil {
		return nil, err
	}
	sabor := normalizar(f.Sabor)
	mesero := strings.TrimSpace(f.Mesero)

	counts, err := s.pizzas.ContarPorEstado(ctx)
	if err != nil {
		return nil, err
	}
	conteos := make(map[string]int64, len(model.Estados))
	var total int64
	for _, e := range model.Estados {
		conteos[e] = counts[e]
		total += counts[e]
	}

	recaudacion, err := s.pizzas.SumarVendidas(ctx, repository.VentasFilter{
		Sabor: sabor, MeseroNombre: mesero, Desde: desde, Hasta: hasta,
	})
	if err != nil {
		return nil, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := clampPageSize(f.PageSize)
	eventos, totalEventos, err := s.eventos.List(ctx, repository.EventoFilter{
		Modo:         filtroOpcional(f.Modo),
		EstadoHasta:  filtroOpcional(f.Estado),
		PizzaID:      normalizar(f.PizzaID),
		Sabor:        sabor,
		MeseroNombre: mesero,
		Desde:        desde,
		Hasta:        hasta,
		Page:         page,
		Limit:        pageSize,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.EventoResponse, len(eventos))
	for i := range eventos {
		items[i] = eventoToResponse(&eventos[i])
	}

	return &dto.DashboardResponse{
		Conteos:     conteos,
		TotalPizzas: total,
		Recaudacion: recaudacion,
		Eventos:     items,
		Total:       totalEventos,
		Page:        page,
		PageSize:    pageSize,
	}, nil
}

func (s *dashboardService) ExportarVentas(ctx context.Context, f dto.VentasExportFilter) (*dto.VentasExport, error) {
	desde, hasta, err := parseRango(f.Desde, f.Hasta)
	if err != nil {
		return nil, err
	}
	rows, err := s.pizzas.ListVendidas(ctx, repository.VentasFilter{
		Sabor:        normalizar(f.Sabor),
		MeseroNombre: strings.TrimSpace(f.Mesero),
		Desde:        desde,
		Hasta:        hasta,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.VentasExport{Rows: make([]dto.VentaExportRow, len(rows)), Total: decimal.Zero}
	for i, r := range rows {
		var soldAt string
		if r.SoldAt != nil {
			soldAt = r.SoldAt.Format("2006-01-02 15:04:05")
		}
		out.Rows[i] = dto.VentaExportRow{
			PizzaID: r.ID,
			Sabor:   r.Sabor,
			Tamano:  r.Tamano,
			Precio:  r.Precio,
			SoldAt:  soldAt,
			SoldBy:  r.SoldBy,
			Mesero:  r.MeseroNombre,
		}
		out.Total = out.Total.Add(r.Precio)
	}
	return out, nil
}

func clampPageSize(n int) int {
	switch {
	case n < pageSizeMin:
		return pageSizeMin
	case n > pageSizeMax:
		return pageSizeMax
	}
	return n
}

func filtroOpcional(v string) string {
	v = normalizar(v)
	if v == filtroTodos {
		return ""
	}
	return v
}

func parseRango(desde, hasta string) (*time.Time, *time.Time, error) {
	d, err := parseFecha(desde)
	if err != nil {
		return nil, nil, err
	}
	h, err := parseFecha(hasta)
	if err != nil {
		return nil, nil, err
	}
	return d, h, nil
}

func parseFecha(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, invalidArgument("Fecha invalida: %s (use AAAA-MM-DD)", s)
	}
	return &t, nil
}

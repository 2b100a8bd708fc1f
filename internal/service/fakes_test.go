package service_test

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"cipriano/internal/model"
	"cipriano/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store shared by the repository fakes ──────────────────────────

type memStore struct {
	pizzas     map[string]*model.Pizza
	lotes      map[string]*model.Lote
	eventos    []*model.EventoEscaneo
	meseros    []*model.Mesero
	operadores map[string]*model.Operador
	nextEvento uint64
	clock      time.Time
}

func newMemStore() *memStore {
	return &memStore{
		pizzas:     make(map[string]*model.Pizza),
		lotes:      make(map[string]*model.Lote),
		operadores: make(map[string]*model.Operador),
		clock:      time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so event order is deterministic.
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) seedPizza(id, sabor, estado string, precio float64) *model.Pizza {
	p := &model.Pizza{
		ID:        id,
		Sabor:     sabor,
		Estado:    estado,
		Precio:    decimal.NewFromFloat(precio),
		CreatedAt: s.tick(),
	}
	s.pizzas[id] = p
	return p
}

func (s *memStore) seedMesero(codigo, nombre string) *model.Mesero {
	m := &model.Mesero{ID: uuid.New(), Codigo: codigo, Nombre: nombre, Activo: true, CreatedAt: s.tick()}
	s.meseros = append(s.meseros, m)
	return m
}

func (s *memStore) eventosDe(pizzaID string) []model.EventoEscaneo {
	var out []model.EventoEscaneo
	for _, e := range s.eventos {
		if e.PizzaID == pizzaID {
			out = append(out, *e)
		}
	}
	return out
}

var digitos = regexp.MustCompile(`^[0-9]{1,9}$`)

func maxSufijo(codigos []string, prefijo string) int {
	max := 0
	for _, c := range codigos {
		if !strings.HasPrefix(c, prefijo) {
			continue
		}
		suf := strings.TrimPrefix(c, prefijo)
		if !digitos.MatchString(suf) {
			continue
		}
		if n, _ := strconv.Atoi(suf); n > max {
			max = n
		}
	}
	return max
}

// ── Pizzas ───────────────────────────────────────────────────────────────────

type fakePizzaRepo struct{ st *memStore }

var _ repository.PizzaRepository = (*fakePizzaRepo)(nil)

func (r *fakePizzaRepo) DB() *gorm.DB { return nil }

func (r *fakePizzaRepo) FindByID(_ context.Context, id string) (*model.Pizza, error) {
	p, ok := r.st.pizzas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePizzaRepo) ListByLote(_ context.Context, codigoLote, desdeID, hastaID string) ([]model.Pizza, error) {
	var out []model.Pizza
	for _, p := range r.st.pizzas {
		if !strings.HasPrefix(p.ID, codigoLote+"-") || !digitos.MatchString(strings.TrimPrefix(p.ID, codigoLote+"-")) {
			continue
		}
		if (desdeID != "" && p.ID < desdeID) || (hastaID != "" && p.ID > hastaID) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePizzaRepo) ContarPorEstado(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, p := range r.st.pizzas {
		counts[p.Estado]++
	}
	return counts, nil
}

func (r *fakePizzaRepo) vendidas(f repository.VentasFilter) []repository.VentaRow {
	var out []repository.VentaRow
	for _, p := range r.st.pizzas {
		if p.Estado != model.EstadoVendida {
			continue
		}
		if f.Sabor != "" && p.Sabor != f.Sabor {
			continue
		}
		if f.Desde != nil && (p.SoldAt == nil || p.SoldAt.Format("2006-01-02") < f.Desde.Format("2006-01-02")) {
			continue
		}
		if f.Hasta != nil && (p.SoldAt == nil || p.SoldAt.Format("2006-01-02") > f.Hasta.Format("2006-01-02")) {
			continue
		}
		mesero := r.meseroDeVenta(p.ID)
		if f.MeseroNombre != "" && !strings.Contains(strings.ToLower(mesero), strings.ToLower(f.MeseroNombre)) {
			continue
		}
		out = append(out, repository.VentaRow{Pizza: *p, MeseroNombre: mesero})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakePizzaRepo) meseroDeVenta(pizzaID string) string {
	var nombre string
	for _, e := range r.st.eventos {
		if e.PizzaID == pizzaID && e.Modo == model.ModoVentas && e.EstadoHasta == model.EstadoVendida && !e.Deshecho {
			nombre = e.MeseroNombre
		}
	}
	return nombre
}

func (r *fakePizzaRepo) SumarVendidas(_ context.Context, f repository.VentasFilter) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, v := range r.vendidas(f) {
		total = total.Add(v.Precio)
	}
	return total, nil
}

func (r *fakePizzaRepo) ListVendidas(_ context.Context, f repository.VentasFilter) ([]repository.VentaRow, error) {
	return r.vendidas(f), nil
}

func (r *fakePizzaRepo) FindByIDForUpdateTx(_ *gorm.DB, id string) (*model.Pizza, error) {
	return r.FindByID(context.Background(), id)
}

func (r *fakePizzaRepo) UpdateTx(_ *gorm.DB, p *model.Pizza) error {
	cp := *p
	r.st.pizzas[p.ID] = &cp
	return nil
}

// CreateManyTx is all-or-nothing like the single INSERT it stands in for.
func (r *fakePizzaRepo) CreateManyTx(_ *gorm.DB, pizzas []model.Pizza) error {
	for _, p := range pizzas {
		if _, exists := r.st.pizzas[p.ID]; exists {
			return gorm.ErrDuplicatedKey
		}
	}
	for i := range pizzas {
		pizzas[i].CreatedAt = r.st.tick()
		cp := pizzas[i]
		r.st.pizzas[cp.ID] = &cp
	}
	return nil
}

func (r *fakePizzaRepo) MaxSecuenciaTx(_ *gorm.DB, prefijo string) (int, error) {
	ids := make([]string, 0, len(r.st.pizzas))
	for id := range r.st.pizzas {
		ids = append(ids, id)
	}
	return maxSufijo(ids, prefijo), nil
}

// ── Eventos ──────────────────────────────────────────────────────────────────

type fakeEventoRepo struct{ st *memStore }

var _ repository.EventoRepository = (*fakeEventoRepo)(nil)

func (r *fakeEventoRepo) CreateTx(_ *gorm.DB, e *model.EventoEscaneo) error {
	r.st.nextEvento++
	e.ID = r.st.nextEvento
	e.CreatedAt = r.st.tick()
	cp := *e
	r.st.eventos = append(r.st.eventos, &cp)
	return nil
}

func (r *fakeEventoRepo) UltimoPendienteForUpdateTx(_ *gorm.DB) (*model.EventoEscaneo, error) {
	var last *model.EventoEscaneo
	for _, e := range r.st.eventos {
		if e.Deshecho || e.Modo == model.ModoUndo {
			continue
		}
		if last == nil || e.CreatedAt.After(last.CreatedAt) ||
			(e.CreatedAt.Equal(last.CreatedAt) && e.ID > last.ID) {
			last = e
		}
	}
	if last == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *last
	return &cp, nil
}

func (r *fakeEventoRepo) MarcarDeshechoTx(_ *gorm.DB, id uint64) error {
	for _, e := range r.st.eventos {
		if e.ID == id && !e.Deshecho {
			e.Deshecho = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeEventoRepo) List(_ context.Context, f repository.EventoFilter) ([]model.EventoEscaneo, int64, error) {
	var out []model.EventoEscaneo
	for i := len(r.st.eventos) - 1; i >= 0; i-- {
		e := *r.st.eventos[i]
		p := r.st.pizzas[e.PizzaID]
		switch {
		case f.Modo != "" && e.Modo != f.Modo,
			f.EstadoHasta != "" && e.EstadoHasta != f.EstadoHasta,
			f.PizzaID != "" && !strings.Contains(e.PizzaID, f.PizzaID),
			f.Sabor != "" && p.Sabor != f.Sabor,
			f.MeseroNombre != "" && !strings.Contains(strings.ToLower(e.MeseroNombre), strings.ToLower(f.MeseroNombre)):
			continue
		}
		e.Pizza = p
		out = append(out, e)
	}
	total := int64(len(out))
	start := (f.Page - 1) * f.Limit
	if start > len(out) {
		start = len(out)
	}
	end := start + f.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

// ── Lotes ────────────────────────────────────────────────────────────────────

type fakeLoteRepo struct{ st *memStore }

var _ repository.LoteRepository = (*fakeLoteRepo)(nil)

func (r *fakeLoteRepo) FindByCodigo(_ context.Context, codigo string) (*model.Lote, error) {
	l, ok := r.st.lotes[codigo]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return l, nil
}

func (r *fakeLoteRepo) FindOrCreateForUpdateTx(_ *gorm.DB, l *model.Lote) (*model.Lote, error) {
	if existing, ok := r.st.lotes[l.Codigo]; ok {
		return existing, nil
	}
	l.ID = uuid.New()
	r.st.lotes[l.Codigo] = l
	return l, nil
}

// ── Meseros ──────────────────────────────────────────────────────────────────

type fakeMeseroRepo struct{ st *memStore }

var _ repository.MeseroRepository = (*fakeMeseroRepo)(nil)

func (r *fakeMeseroRepo) DB() *gorm.DB { return nil }

func (r *fakeMeseroRepo) ListActivos(_ context.Context) ([]model.Mesero, error) {
	var out []model.Mesero
	for _, m := range r.st.meseros {
		if m.Activo {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMeseroRepo) ListByCodigos(_ context.Context, codigos []string) ([]model.Mesero, error) {
	want := make(map[string]bool, len(codigos))
	for _, c := range codigos {
		want[c] = true
	}
	var out []model.Mesero
	for _, m := range r.st.meseros {
		if m.Activo && want[m.Codigo] {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMeseroRepo) FindActivoByCodigoTx(_ *gorm.DB, codigo string) (*model.Mesero, error) {
	for _, m := range r.st.meseros {
		if m.Codigo == codigo && m.Activo {
			cp := *m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMeseroRepo) CreateTx(_ *gorm.DB, m *model.Mesero) error {
	for _, existing := range r.st.meseros {
		if existing.Codigo == m.Codigo {
			return gorm.ErrDuplicatedKey
		}
	}
	m.ID = uuid.New()
	cp := *m
	r.st.meseros = append(r.st.meseros, &cp)
	return nil
}

func (r *fakeMeseroRepo) MaxSecuenciaTx(_ *gorm.DB, prefijo string) (int, error) {
	codigos := make([]string, 0, len(r.st.meseros))
	for _, m := range r.st.meseros {
		codigos = append(codigos, m.Codigo)
	}
	return maxSufijo(codigos, prefijo), nil
}

// ── Operadores ───────────────────────────────────────────────────────────────

type fakeOperadorRepo struct{ st *memStore }

var _ repository.OperadorRepository = (*fakeOperadorRepo)(nil)

func (r *fakeOperadorRepo) Create(_ context.Context, o *model.Operador) error {
	if _, ok := r.st.operadores[o.Username]; ok {
		return gorm.ErrDuplicatedKey
	}
	o.ID = uuid.New()
	r.st.operadores[o.Username] = o
	return nil
}

func (r *fakeOperadorRepo) FindByUsername(_ context.Context, username string) (*model.Operador, error) {
	o, ok := r.st.operadores[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *fakeOperadorRepo) Update(_ context.Context, o *model.Operador) error {
	r.st.operadores[o.Username] = o
	return nil
}

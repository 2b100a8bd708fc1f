package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// EscaneoRequest is sent by a kitchen or sales station after reading a QR.
type EscaneoRequest struct {
	PizzaID string `json:"pizza_id" validate:"required,max=32"`
	Modo    string `json:"modo"     validate:"required,max=16"`
	// Sabor backfills the flavor only when the pizza has none.
	Sabor        string `json:"sabor"         validate:"omitempty,max=40"`
	OverridePin  string `json:"override_pin"  validate:"omitempty,max=12"`
	MeseroCodigo string `json:"mesero_codigo" validate:"omitempty,max=24"`
}

type AdminEstadoRequest struct {
	PizzaID string `json:"pizza_id" validate:"required,max=32"`
	Estado  string `json:"estado"   validate:"required,oneof=CANCELADA MERMA"`
	Pin     string `json:"pin"      validate:"required"`
}

type DeshacerRequest struct {
	Pin string `json:"pin" validate:"required"`
}

type VerificarPinRequest struct {
	Pin string `json:"pin" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PizzaResponse struct {
	ID         string  `json:"id"`
	Sabor      string  `json:"sabor"`
	Tamano     string  `json:"tamano"`
	Precio     string  `json:"precio"`
	Estado     string  `json:"estado"`
	Lote       string  `json:"lote"`
	CreatedAt  string  `json:"created_at"`
	ReadyAt    *string `json:"ready_at"`
	ReadyBy    string  `json:"ready_by"`
	SoldAt     *string `json:"sold_at"`
	SoldBy     string  `json:"sold_by"`
	CanceledAt *string `json:"canceled_at"`
	CanceledBy string  `json:"canceled_by"`
}

type EventoResponse struct {
	ID           uint64 `json:"id"`
	PizzaID      string `json:"pizza_id"`
	Sabor        string `json:"sabor,omitempty"`
	Modo         string `json:"modo"`
	ActorNombre  string `json:"actor_nombre"`
	ActorRol     string `json:"actor_rol"`
	EstadoDesde  string `json:"estado_desde"`
	EstadoHasta  string `json:"estado_hasta"`
	MeseroCodigo string `json:"mesero_codigo,omitempty"`
	MeseroNombre string `json:"mesero_nombre,omitempty"`
	Nota         string `json:"nota,omitempty"`
	Deshecho     bool   `json:"deshecho"`
	CreatedAt    string `json:"created_at"`
}

// EscaneoResponse is returned by scan, admin status and undo.
type EscaneoResponse struct {
	Mensaje string         `json:"mensaje"`
	Pizza   PizzaResponse  `json:"pizza"`
	Evento  EventoResponse `json:"evento"`
}

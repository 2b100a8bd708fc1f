package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=40"`
	Pin      string `json:"pin"      validate:"required,min=4,max=12,numeric"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OperadorResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Rol      string `json:"rol"`
	// Etiqueta is the role label stamped on scan events (COCINA, VENTAS, ADMIN).
	Etiqueta string `json:"etiqueta"`
}

type LoginResponse struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	ExpiresIn   int              `json:"expires_in"` // seconds
	Operador    OperadorResponse `json:"operador"`
}

package dto

type CrearMeseroRequest struct {
	Nombre string `json:"nombre" validate:"required,min=2,max=80"`
}

type MeseroResponse struct {
	ID     string `json:"id"`
	Codigo string `json:"codigo"`
	Nombre string `json:"nombre"`
	Activo bool   `json:"activo"`
}

// EtiquetasMeserosQuery selects waiters by code; empty means all active.
type EtiquetasMeserosQuery struct {
	Codigos []string `form:"codigo"`
}

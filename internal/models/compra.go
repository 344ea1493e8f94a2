package models

// EstadoProcesado marca una compra ya convertida en certificado
const EstadoProcesado = "PROCESADO"

// Compra representa una fila de la hoja de compras pendiente de procesar.
// Una compra sin código todavía no tiene certificado asociado.
type Compra struct {
	RowIndex     int    `json:"row_index"` // fila 1-based en la hoja, incluyendo header
	Codigo       string `json:"codigo,omitempty"`
	Nombres      string `json:"nombres"`
	Apellidos    string `json:"apellidos"`
	DNI          string `json:"dni,omitempty"`
	Curso        string `json:"curso"`
	FechaEmision string `json:"fecha_emision,omitempty"`
	Horas        string `json:"horas,omitempty"`
	Estado       string `json:"estado,omitempty"`
}

// CompraListResponse representa la lista de compras pendientes
type CompraListResponse struct {
	Total   int      `json:"total"`
	Compras []Compra `json:"compras"`
}

// ProcesarCompraRequest representa la solicitud de procesamiento de una
// compra pendiente; la mención determina el contenido del certificado
type ProcesarCompraRequest struct {
	MencionNro string `json:"mencion_nro" binding:"required"`
}

// ProcesarCompraResponse representa el resultado de procesar una compra
type ProcesarCompraResponse struct {
	Success     bool        `json:"success"`
	Codigo      string      `json:"codigo"`
	Certificado Certificate `json:"certificado"`
	Message     string      `json:"message"`
}

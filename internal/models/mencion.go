package models

// Mencion representa un programa/curso reutilizable referenciado por los
// certificados. NRO es la clave de búsqueda; MENCIÓN es la frase que se
// imprime como título del certificado.
type Mencion struct {
	Nro          string `json:"nro"`
	Especialidad string `json:"especialidad"`
	PCertificado string `json:"p_certificado"`
	Mencion      string `json:"mencion"`
	Horas        string `json:"horas"`
	FechaInicio  string `json:"f_inicio"`
	FechaTermino string `json:"f_termino"`
	FechaEmision string `json:"f_emision"`
}

// MencionListResponse representa la lista de menciones disponibles
type MencionListResponse struct {
	Total     int       `json:"total"`
	Source    string    `json:"source"`
	Menciones []Mencion `json:"menciones"`
}

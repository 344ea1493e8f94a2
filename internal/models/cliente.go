package models

import "strings"

// Cliente representa un cliente registrado en la hoja CLIENTES
type Cliente struct {
	DNI            string `json:"dni"`
	NombreCompleto string `json:"nombre_completo"`
	Celular        string `json:"celular,omitempty"`
	Correo         string `json:"correo,omitempty"`
}

// NormalizeDNI normaliza un DNI para comparación: quita guiones, puntos y
// espacios y pasa a minúsculas
func NormalizeDNI(dni string) string {
	r := strings.NewReplacer("-", "", ".", "", " ", "")
	return strings.ToLower(strings.TrimSpace(r.Replace(dni)))
}

// CreateClienteRequest representa la solicitud de creación de cliente
type CreateClienteRequest struct {
	DNI            string `json:"dni"`
	NombreCompleto string `json:"nombreCompleto" binding:"required"`
	Correo         string `json:"email"`
	Telefono       string `json:"telefono"`
}

// UpdateClienteRequest representa la solicitud de actualización de cliente;
// los campos vacíos no se tocan
type UpdateClienteRequest struct {
	NombreCompleto string `json:"nombreCompleto"`
	Correo         string `json:"email"`
	Telefono       string `json:"telefono"`
}

// ClienteListResponse representa la lista de clientes
type ClienteListResponse struct {
	Total    int       `json:"total"`
	Clientes []Cliente `json:"clientes"`
}

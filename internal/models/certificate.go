package models

// EstadoValido y EstadoAnulado son los dos estados posibles de un certificado
const (
	EstadoValido  = "VALIDO"
	EstadoAnulado = "ANULADO"
)

// Certificate representa un certificado emitido, tal como vive en la hoja
// CERTIFICADOS QR (vista denormalizada con datos del cliente y de la mención)
type Certificate struct {
	Codigo         string `json:"codigo"`
	Nombres        string `json:"nombres"`
	Apellidos      string `json:"apellidos"`
	NombreCompleto string `json:"nombre_completo"`
	DNI            string `json:"dni,omitempty"`
	Curso          string `json:"curso"`
	FechaEmision   string `json:"fecha_emision"`
	Horas          string `json:"horas,omitempty"`
	Estado         string `json:"estado"`
	MotivoAnulacion string `json:"motivo_anulacion,omitempty"`
	PDFURL         string `json:"pdf_url,omitempty"`
	Celular        string `json:"celular,omitempty"`
	Correo         string `json:"correo,omitempty"`
	Modalidad      string `json:"modalidad,omitempty"`

	// Campos de la mención, copiados al emitir (snapshot: cambios
	// posteriores en la mención no afectan certificados ya emitidos)
	MencionNro    string `json:"nro,omitempty"`
	Especialidad  string `json:"especialidad,omitempty"`
	PCertificado  string `json:"p_certificado,omitempty"`
	Mencion       string `json:"mencion,omitempty"`
	FechaInicio   string `json:"f_inicio,omitempty"`
	FechaTermino  string `json:"f_termino,omitempty"`
}

// SplitNombre separa un nombre completo en nombres y apellidos: la primera
// palabra es el nombre y el resto los apellidos
func SplitNombre(nombreCompleto string) (nombres, apellidos string) {
	completo := nombreCompleto
	for i, r := range completo {
		if r == ' ' {
			return completo[:i], completo[i+1:]
		}
	}
	return completo, ""
}

// CreateCertificateRequest representa la solicitud de creación de certificado
type CreateCertificateRequest struct {
	Codigo         string `json:"codigo"`
	Nombres        string `json:"nombres"`
	Apellidos      string `json:"apellidos"`
	NombreCompleto string `json:"nombre_completo"`
	DNI            string `json:"dni"`
	Curso          string `json:"curso"`
	FechaEmision   string `json:"fecha_emision"`
	Horas          string `json:"horas"`
	Estado         string `json:"estado"`
	Modalidad      string `json:"modalidad"`
	MencionNro     string `json:"mencion_nro"`
}

// UpdateCertificateRequest representa la solicitud de actualización; los
// campos vacíos no se tocan
type UpdateCertificateRequest struct {
	Nombres      string `json:"nombres"`
	Apellidos    string `json:"apellidos"`
	DNI          string `json:"dni"`
	Curso        string `json:"curso"`
	FechaEmision string `json:"fecha_emision"`
	Horas        string `json:"horas"`
	Estado       string `json:"estado"`
	PDFURL       string `json:"pdf_url"`
}

// AnularCertificateRequest representa la solicitud de anulación
type AnularCertificateRequest struct {
	Motivo string `json:"motivo"`
}

// CertificateResponse representa la respuesta pública de consulta de
// certificado; Found distingue "no existe" de un error del servicio
type CertificateResponse struct {
	Found        bool   `json:"found"`
	Codigo       string `json:"codigo,omitempty"`
	Nombres      string `json:"nombres,omitempty"`
	Apellidos    string `json:"apellidos,omitempty"`
	Curso        string `json:"curso,omitempty"`
	FechaEmision string `json:"fecha_emision,omitempty"`
	Horas        string `json:"horas,omitempty"`
	Estado       string `json:"estado,omitempty"`
	PDFURL       string `json:"pdf_url,omitempty"`
	VerifyURL    string `json:"verify_url,omitempty"`

	// PartialWrite se reporta cuando la escritura en la vista denormalizada
	// falló; el certificado existe igualmente en la hoja canónica
	PartialWrite string `json:"partial_write,omitempty"`
}

// SearchRequest representa una búsqueda pública por código
type SearchRequest struct {
	Codigo string `json:"codigo" binding:"required"`
}

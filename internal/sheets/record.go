package sheets

import "strings"

// Record representa una fila de una colección, keyed por nombre de columna
// tal como aparece en el header de la hoja. Las hojas las editan personas,
// así que los nombres de columna no son estables: el mismo campo lógico
// aparece con distintas grafías según la hoja y la época.
type Record map[string]string

// fieldAliases mapea cada campo canónico a la lista ordenada de grafías
// aceptadas. La primera grafía es la preferida y se usa al crear columnas
// nuevas. La comparación de headers es case-insensitive, por lo que solo se
// listan variantes que difieren más allá de mayúsculas/minúsculas.
var fieldAliases = map[string][]string{
	"codigo":          {"CODIGO", "CÓDIGO"},
	"dni":             {"DNI DEL CLIENTE", "DNI", "DNI CLIENTE"},
	"nombre_completo": {"NOMBRE COMPLETO DEL CLIENTE", "NOMBRE COMPLETO", "NOMBRE", "CLIENTE"},
	"nombres":         {"NOMBRES"},
	"apellidos":       {"APELLIDOS"},
	"celular":         {"CELULAR DEL CLIENTE", "CELULAR", "TELEFONO", "TELÉFONO", "PHONE"},
	"correo":          {"CORREO DEL CLIENTE", "CORREO", "EMAIL", "E-MAIL"},
	"curso":           {"CURSO", "NOMBRE DEL CURSO"},
	"fecha_emision":   {"FECHA EMISION", "FECHA EMISIÓN", "F. EMISIÓN", "F. EMISION", "FECHA DE EMISIÓN", "FECHA"},
	"horas":           {"HORAS", "HORAS TOTALES", "TOTAL HORAS"},
	"estado":          {"ESTADO", "ESTADO CERTIFICADO"},
	"motivo_anulacion": {"MOTIVO ANULACION", "MOTIVO ANULACIÓN", "MOTIVO DE ANULACION"},
	"pdf_url":         {"PDF_URL", "PDF URL", "URL PDF", "URL"},
	"nro":             {"NRO", "NRO MENCION", "NUMERO MENCION", "MENCIÓN NRO"},
	"especialidad":    {"ESPECIALIDAD", "ESPECIALIDAD MENCION"},
	"p_certificado":   {"P. CERTIFICADO", "P CERTIFICADO", "PROGRAMA CERTIFICADO", "PROGRAMA"},
	"mencion":         {"MENCIÓN", "MENCION", "TEXTO MENCION"},
	"f_inicio":        {"F. INICIO", "F INICIO", "FECHA INICIO", "FECHA DE INICIO"},
	"f_termino":       {"F. TÉRMINO", "F. TERMINO", "F TERMINO", "FECHA TERMINO", "FECHA DE TERMINO"},
	"modalidad":       {"MODALIDAD"},
	"fecha_procesado": {"FECHA PROCESADO"},
}

// normalizeHeader normaliza un header para comparación
func normalizeHeader(h string) string {
	return strings.ToUpper(strings.TrimSpace(h))
}

// headerMatches compara un header de la hoja contra una grafía aceptada
func headerMatches(header, alias string) bool {
	return normalizeHeader(header) == normalizeHeader(alias)
}

// Resolve busca el valor de un campo canónico en el record, probando cada
// grafía aceptada en orden de prioridad. El propio nombre canónico también
// se acepta como header. Retorna "" si ninguna columna tiene valor.
func Resolve(r Record, canonical string) string {
	aliases, ok := fieldAliases[canonical]
	if !ok {
		aliases = []string{canonical}
	} else {
		aliases = append(aliases, canonical)
	}

	for _, alias := range aliases {
		for header, value := range r {
			if headerMatches(header, alias) && strings.TrimSpace(value) != "" {
				return strings.TrimSpace(value)
			}
		}
	}
	return ""
}

// CanonicalOf retorna el campo canónico al que pertenece un header de la
// hoja, si alguna grafía aceptada lo reconoce
func CanonicalOf(header string) (string, bool) {
	for canonical, aliases := range fieldAliases {
		if headerMatches(header, canonical) {
			return canonical, true
		}
		for _, alias := range aliases {
			if headerMatches(header, alias) {
				return canonical, true
			}
		}
	}
	return "", false
}

// preferredHeader retorna la grafía preferida para un campo al crear una
// columna nueva: la primera grafía aceptada si el campo es canónico, o el
// nombre tal cual si no lo es
func preferredHeader(field string) string {
	if canonical, ok := CanonicalOf(field); ok {
		return fieldAliases[canonical][0]
	}
	return field
}

// valueFor resuelve el valor que corresponde a un header de destino a partir
// de los campos provistos por el caller, que puede usar nombres canónicos o
// cualquier grafía aceptada. Headers sin valor resoluble quedan en "".
func valueFor(fields map[string]string, header string) string {
	// Coincidencia directa, case-insensitive
	for name, value := range fields {
		if headerMatches(name, header) {
			return value
		}
	}

	// Coincidencia por campo canónico
	canonical, ok := CanonicalOf(header)
	if !ok {
		return ""
	}
	for name, value := range fields {
		if headerMatches(name, canonical) {
			return value
		}
		if fieldCanonical, ok := CanonicalOf(name); ok && fieldCanonical == canonical {
			return value
		}
	}
	return ""
}

package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cpd-labs/certificados-service/internal/config"
	"github.com/cpd-labs/certificados-service/internal/models"
	"github.com/cpd-labs/certificados-service/internal/sheets"
)

// CertificateRepository maneja las operaciones del almacén remoto para los
// certificados. La hoja CERTIFICADOS QR es el registro completo que alimenta
// la verificación pública; la hoja de certificados es el registro histórico.
type CertificateRepository struct {
	store  *sheets.Store
	logger *logrus.Logger
}

// NewCertificateRepository crea una nueva instancia del repositorio
func NewCertificateRepository(store *sheets.Store, logger *logrus.Logger) *CertificateRepository {
	return &CertificateRepository{
		store:  store,
		logger: logger,
	}
}

// certificateFromRecord arma un certificado desde una fila de CERTIFICADOS QR
func certificateFromRecord(record sheets.Record) *models.Certificate {
	nombreCompleto := sheets.Resolve(record, "nombre_completo")
	nombres, apellidos := models.SplitNombre(nombreCompleto)

	curso := sheets.Resolve(record, "curso")
	if curso == "" {
		curso = sheets.Resolve(record, "p_certificado")
	}

	estado := sheets.Resolve(record, "estado")
	if estado == "" {
		estado = models.EstadoValido
	}

	return &models.Certificate{
		Codigo:          sheets.Resolve(record, "codigo"),
		Nombres:         nombres,
		Apellidos:       apellidos,
		NombreCompleto:  nombreCompleto,
		DNI:             sheets.Resolve(record, "dni"),
		Curso:           curso,
		FechaEmision:    sheets.Resolve(record, "fecha_emision"),
		Horas:           sheets.Resolve(record, "horas"),
		Estado:          estado,
		MotivoAnulacion: sheets.Resolve(record, "motivo_anulacion"),
		PDFURL:          sheets.Resolve(record, "pdf_url"),
		Celular:         sheets.Resolve(record, "celular"),
		Correo:          sheets.Resolve(record, "correo"),
		Modalidad:       sheets.Resolve(record, "modalidad"),
		MencionNro:      sheets.Resolve(record, "nro"),
		Especialidad:    sheets.Resolve(record, "especialidad"),
		PCertificado:    sheets.Resolve(record, "p_certificado"),
		Mencion:         sheets.Resolve(record, "mencion"),
		FechaInicio:     sheets.Resolve(record, "f_inicio"),
		FechaTermino:    sheets.Resolve(record, "f_termino"),
	}
}

// fieldsFromCertificate arma los campos canónicos para escribir en las hojas
func fieldsFromCertificate(cert *models.Certificate) map[string]string {
	return map[string]string{
		"codigo":          cert.Codigo,
		"dni":             cert.DNI,
		"nombre_completo": cert.NombreCompleto,
		"nombres":         cert.Nombres,
		"apellidos":       cert.Apellidos,
		"celular":         cert.Celular,
		"correo":          cert.Correo,
		"curso":           cert.Curso,
		"fecha_emision":   cert.FechaEmision,
		"horas":           cert.Horas,
		"estado":          cert.Estado,
		"pdf_url":         cert.PDFURL,
		"modalidad":       cert.Modalidad,
		"nro":             cert.MencionNro,
		"especialidad":    cert.Especialidad,
		"p_certificado":   cert.PCertificado,
		"mencion":         cert.Mencion,
		"f_inicio":        cert.FechaInicio,
		"f_termino":       cert.FechaTermino,
	}
}

// GetByCode busca un certificado por código en CERTIFICADOS QR
func (r *CertificateRepository) GetByCode(ctx context.Context, codigo string) (*models.Certificate, error) {
	record, _, err := r.store.FindByKey(ctx, config.CollectionCertificadosQR, "codigo", codigo)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: certificado %s", models.ErrNotFound, codigo)
	}
	return certificateFromRecord(record), nil
}

// Exists indica si ya hay un certificado con el código dado
func (r *CertificateRepository) Exists(ctx context.Context, codigo string) (bool, error) {
	record, _, err := r.store.FindByKey(ctx, config.CollectionCertificadosQR, "codigo", codigo)
	if err != nil {
		return false, err
	}
	return record != nil, nil
}

// List retorna todos los certificados de CERTIFICADOS QR
func (r *CertificateRepository) List(ctx context.Context) ([]models.Certificate, error) {
	records, err := r.store.ListAll(ctx, config.CollectionCertificadosQR, false)
	if err != nil {
		return nil, err
	}

	certificados := make([]models.Certificate, 0, len(records))
	for _, record := range records {
		certificados = append(certificados, *certificateFromRecord(record))
	}
	return certificados, nil
}

// Create guarda el certificado en ambas hojas. La escritura en CERTIFICADOS
// QR es la que alimenta la verificación pública; si solo falla el espejo
// histórico el certificado queda emitido y se retorna PartialWriteError para
// que el caller lo reporte sin deshacer la emisión.
func (r *CertificateRepository) Create(ctx context.Context, cert *models.Certificate) error {
	exists, err := r.Exists(ctx, cert.Codigo)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: el código %s ya existe", models.ErrConflict, cert.Codigo)
	}

	fields := fieldsFromCertificate(cert)

	if err := r.store.Append(ctx, config.CollectionCertificadosQR, fields); err != nil {
		return err
	}

	if err := r.store.Append(ctx, config.CollectionCertificados, fields); err != nil {
		r.logger.WithError(err).WithField("codigo", cert.Codigo).Warn("Certificado emitido pero no registrado en la hoja histórica")
		return &models.PartialWriteError{Collection: config.CollectionCertificados, Err: err}
	}
	return nil
}

// Update escribe los campos indicados en CERTIFICADOS QR y replica al espejo
// histórico cuando la fila existe ahí
func (r *CertificateRepository) Update(ctx context.Context, codigo string, fields map[string]string) (*models.Certificate, error) {
	if err := r.store.Update(ctx, config.CollectionCertificadosQR, "codigo", codigo, fields); err != nil {
		return nil, err
	}

	if err := r.store.Update(ctx, config.CollectionCertificados, "codigo", codigo, fields); err != nil {
		r.logger.WithError(err).WithField("codigo", codigo).Warn("No se pudo replicar la actualización a la hoja histórica")
	}

	return r.GetByCode(ctx, codigo)
}

// Anular marca el certificado como anulado. Anular un certificado ya anulado
// no es error: retorna el certificado tal como está.
func (r *CertificateRepository) Anular(ctx context.Context, codigo, motivo string) (*models.Certificate, error) {
	cert, err := r.GetByCode(ctx, codigo)
	if err != nil {
		return nil, err
	}
	if cert.Estado == models.EstadoAnulado {
		return cert, nil
	}

	fields := map[string]string{"estado": models.EstadoAnulado}
	if motivo != "" {
		fields["motivo_anulacion"] = motivo
	}
	return r.Update(ctx, codigo, fields)
}

// UpdatePDFURL escribe la URL del certificado en CERTIFICADOS QR
func (r *CertificateRepository) UpdatePDFURL(ctx context.Context, codigo, pdfURL string) error {
	return r.store.Update(ctx, config.CollectionCertificadosQR, "codigo", codigo, map[string]string{"pdf_url": pdfURL})
}

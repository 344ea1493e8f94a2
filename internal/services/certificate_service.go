package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cpd-labs/certificados-service/internal/config"
	"github.com/cpd-labs/certificados-service/internal/database"
	"github.com/cpd-labs/certificados-service/internal/models"
	"github.com/cpd-labs/certificados-service/internal/storage"
)

// IssueNotifier recibe el aviso de que un certificado quedó emitido. Las
// implementaciones no deben bloquear la emisión: cualquier fallo es suyo.
type IssueNotifier interface {
	NotifyIssued(ctx context.Context, cert *models.Certificate, verifyURL string)
}

// CertificateService orquesta la emisión, consulta y anulación de
// certificados
type CertificateService struct {
	certRepo    *database.CertificateRepository
	mencionRepo *database.MencionRepository
	clienteRepo *database.ClienteRepository
	codeGen     *CodeGenerator
	pdfGen      *PDFGenerator
	storage     storage.Service
	cfg         *config.Config
	notifier    IssueNotifier
	logger      *logrus.Logger
}

// NewCertificateService crea una nueva instancia del servicio
func NewCertificateService(
	certRepo *database.CertificateRepository,
	mencionRepo *database.MencionRepository,
	clienteRepo *database.ClienteRepository,
	codeGen *CodeGenerator,
	pdfGen *PDFGenerator,
	storageSvc storage.Service,
	cfg *config.Config,
	logger *logrus.Logger,
) *CertificateService {
	return &CertificateService{
		certRepo:    certRepo,
		mencionRepo: mencionRepo,
		clienteRepo: clienteRepo,
		codeGen:     codeGen,
		pdfGen:      pdfGen,
		storage:     storageSvc,
		cfg:         cfg,
		logger:      logger,
	}
}

// SetNotifier registra el notificador de emisiones
func (s *CertificateService) SetNotifier(notifier IssueNotifier) {
	s.notifier = notifier
}

// VerifyURL retorna la URL pública de verificación de un código
func (s *CertificateService) VerifyURL(codigo string) string {
	return s.cfg.VerifyURL(codigo)
}

// Create emite un certificado: completa los datos desde la mención y el
// cliente, genera el código si falta y lo guarda en el almacén remoto.
// El *PartialWriteError retornado no anula la emisión: indica que el espejo
// histórico quedó sin la fila.
func (s *CertificateService) Create(ctx context.Context, req *models.CreateCertificateRequest) (*models.Certificate, *models.PartialWriteError, error) {
	cert := &models.Certificate{
		Codigo:         strings.TrimSpace(req.Codigo),
		Nombres:        strings.TrimSpace(req.Nombres),
		Apellidos:      strings.TrimSpace(req.Apellidos),
		NombreCompleto: strings.TrimSpace(req.NombreCompleto),
		DNI:            strings.TrimSpace(req.DNI),
		Curso:          strings.TrimSpace(req.Curso),
		FechaEmision:   strings.TrimSpace(req.FechaEmision),
		Horas:          strings.TrimSpace(req.Horas),
		Estado:         strings.TrimSpace(req.Estado),
		Modalidad:      strings.TrimSpace(req.Modalidad),
		MencionNro:     strings.TrimSpace(req.MencionNro),
	}
	if cert.Estado == "" {
		cert.Estado = models.EstadoValido
	}
	if cert.NombreCompleto == "" {
		cert.NombreCompleto = strings.TrimSpace(cert.Nombres + " " + cert.Apellidos)
	}
	if cert.Nombres == "" && cert.Apellidos == "" {
		cert.Nombres, cert.Apellidos = models.SplitNombre(cert.NombreCompleto)
	}

	if cert.MencionNro != "" {
		if err := s.applyMencion(ctx, cert); err != nil {
			return nil, nil, err
		}
	}

	s.enrichFromCliente(ctx, cert)

	if cert.Codigo == "" {
		codigo, err := s.codeGen.GenerateUnique(ctx, s.certRepo.Exists, cert.MencionNro, cert.DNI)
		if err != nil {
			return nil, nil, err
		}
		cert.Codigo = codigo
	}

	var partial *models.PartialWriteError
	if err := s.certRepo.Create(ctx, cert); err != nil {
		if !errors.As(err, &partial) {
			return nil, nil, err
		}
	}

	verifyURL := s.VerifyURL(cert.Codigo)

	// La columna PDF_URL lleva la URL de verificación, la misma del QR
	if err := s.certRepo.UpdatePDFURL(ctx, cert.Codigo, verifyURL); err != nil {
		s.logger.WithError(err).WithField("codigo", cert.Codigo).Warn("No se pudo escribir PDF_URL tras la emisión")
	} else {
		cert.PDFURL = verifyURL
	}

	s.logger.WithFields(logrus.Fields{
		"codigo": cert.Codigo,
		"dni":    cert.DNI,
		"curso":  cert.Curso,
	}).Info("Certificado emitido")

	if s.notifier != nil {
		s.notifier.NotifyIssued(ctx, cert, verifyURL)
	}
	return cert, partial, nil
}

// applyMencion copia al certificado los datos de la mención referida. Los
// campos que el caller ya envió no se pisan.
func (s *CertificateService) applyMencion(ctx context.Context, cert *models.Certificate) error {
	mencion, err := s.mencionRepo.GetByNro(ctx, cert.MencionNro)
	if err != nil {
		return err
	}

	cert.MencionNro = mencion.Nro
	cert.Especialidad = mencion.Especialidad
	cert.PCertificado = mencion.PCertificado
	cert.Mencion = mencion.Mencion
	cert.FechaInicio = mencion.FechaInicio
	cert.FechaTermino = mencion.FechaTermino

	if cert.Horas == "" {
		cert.Horas = mencion.Horas
	}
	if cert.Curso == "" {
		cert.Curso = mencion.PCertificado
	}
	if cert.FechaEmision == "" {
		cert.FechaEmision = mencion.FechaEmision
	}
	return nil
}

// enrichFromCliente completa nombre, celular y correo desde la hoja CLIENTES
// si hay DNI. Un fallo aquí no bloquea la emisión.
func (s *CertificateService) enrichFromCliente(ctx context.Context, cert *models.Certificate) {
	if cert.DNI == "" {
		return
	}

	cliente, err := s.clienteRepo.GetByDNI(ctx, cert.DNI)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.WithError(err).WithField("dni", cert.DNI).Warn("No se pudo enriquecer el certificado desde CLIENTES")
		}
		return
	}

	if cert.NombreCompleto == "" && cliente.NombreCompleto != "" {
		cert.NombreCompleto = cliente.NombreCompleto
		cert.Nombres, cert.Apellidos = models.SplitNombre(cliente.NombreCompleto)
	}
	if cliente.Celular != "" {
		cert.Celular = cliente.Celular
	}
	if cliente.Correo != "" {
		cert.Correo = cliente.Correo
	}
}

// GetByCode busca un certificado por código
func (s *CertificateService) GetByCode(ctx context.Context, codigo string) (*models.Certificate, error) {
	return s.certRepo.GetByCode(ctx, codigo)
}

// List retorna todos los certificados emitidos
func (s *CertificateService) List(ctx context.Context) ([]models.Certificate, error) {
	return s.certRepo.List(ctx)
}

// Update actualiza los campos no vacíos de un certificado
func (s *CertificateService) Update(ctx context.Context, codigo string, req *models.UpdateCertificateRequest) (*models.Certificate, error) {
	fields := make(map[string]string)
	if req.Nombres != "" || req.Apellidos != "" {
		actual, err := s.certRepo.GetByCode(ctx, codigo)
		if err != nil {
			return nil, err
		}
		nombres := actual.Nombres
		apellidos := actual.Apellidos
		if req.Nombres != "" {
			nombres = strings.TrimSpace(req.Nombres)
		}
		if req.Apellidos != "" {
			apellidos = strings.TrimSpace(req.Apellidos)
		}
		fields["nombre_completo"] = strings.TrimSpace(nombres + " " + apellidos)
	}
	if req.DNI != "" {
		fields["dni"] = strings.TrimSpace(req.DNI)
	}
	if req.Curso != "" {
		fields["curso"] = strings.TrimSpace(req.Curso)
	}
	if req.FechaEmision != "" {
		fields["fecha_emision"] = strings.TrimSpace(req.FechaEmision)
	}
	if req.Horas != "" {
		fields["horas"] = strings.TrimSpace(req.Horas)
	}
	if req.Estado != "" {
		fields["estado"] = strings.TrimSpace(req.Estado)
	}
	if req.PDFURL != "" {
		fields["pdf_url"] = strings.TrimSpace(req.PDFURL)
	}

	if len(fields) == 0 {
		return s.certRepo.GetByCode(ctx, codigo)
	}
	return s.certRepo.Update(ctx, codigo, fields)
}

// Anular anula un certificado. La operación es idempotente.
func (s *CertificateService) Anular(ctx context.Context, codigo, motivo string) (*models.Certificate, error) {
	cert, err := s.certRepo.Anular(ctx, codigo, motivo)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"codigo": codigo,
		"motivo": motivo,
	}).Info("Certificado anulado")
	return cert, nil
}

// RenderPDF genera el PDF del certificado, lo guarda en el almacenamiento y
// retorna su contenido. Si el guardado falla el PDF se entrega igual.
func (s *CertificateService) RenderPDF(ctx context.Context, codigo string) ([]byte, *models.Certificate, error) {
	cert, err := s.certRepo.GetByCode(ctx, codigo)
	if err != nil {
		return nil, nil, err
	}

	verifyURL := s.VerifyURL(cert.Codigo)
	data, err := s.pdfGen.GenerateCertificatePDF(cert, verifyURL)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.storage.SavePDF(ctx, cert.Codigo, data); err != nil {
		s.logger.WithError(err).WithField("codigo", cert.Codigo).Warn("No se pudo guardar el PDF generado")
	} else if err := s.certRepo.UpdatePDFURL(ctx, cert.Codigo, verifyURL); err != nil {
		s.logger.WithError(err).WithField("codigo", cert.Codigo).Warn("No se pudo actualizar PDF_URL tras generar el PDF")
	}

	return data, cert, nil
}

// PublicResponse arma la respuesta pública de consulta para un certificado
func (s *CertificateService) PublicResponse(cert *models.Certificate) *models.CertificateResponse {
	return &models.CertificateResponse{
		Found:        true,
		Codigo:       cert.Codigo,
		Nombres:      cert.Nombres,
		Apellidos:    cert.Apellidos,
		Curso:        cert.Curso,
		FechaEmision: cert.FechaEmision,
		Horas:        cert.Horas,
		Estado:       cert.Estado,
		PDFURL:       cert.PDFURL,
		VerifyURL:    s.VerifyURL(cert.Codigo),
	}
}

// PDFFilename arma el nombre de descarga del PDF
func PDFFilename(cert *models.Certificate) string {
	nombre := strings.TrimSpace(cert.Nombres + "_" + cert.Apellidos)
	if nombre == "_" || nombre == "" {
		return fmt.Sprintf("certificado_%s.pdf", cert.Codigo)
	}
	return fmt.Sprintf("certificado_%s.pdf", strings.ReplaceAll(nombre, " ", "_"))
}

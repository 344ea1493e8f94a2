package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cpd-labs/certificados-service/internal/database"
	"github.com/cpd-labs/certificados-service/internal/models"
)

// CompraService procesa compras pendientes convirtiéndolas en certificados
type CompraService struct {
	compraRepo  *database.CompraRepository
	certService *CertificateService
	logger      *logrus.Logger
}

// NewCompraService crea una nueva instancia del servicio
func NewCompraService(compraRepo *database.CompraRepository, certService *CertificateService, logger *logrus.Logger) *CompraService {
	return &CompraService{
		compraRepo:  compraRepo,
		certService: certService,
		logger:      logger,
	}
}

// ListPendientes retorna las compras sin certificado asignado
func (s *CompraService) ListPendientes(ctx context.Context) ([]models.Compra, error) {
	return s.compraRepo.ListPendientes(ctx)
}

// Procesar emite el certificado de una compra pendiente, identificada por su
// número de fila en la hoja, y marca la fila como procesada
func (s *CompraService) Procesar(ctx context.Context, rowIndex int, mencionNro string) (*models.ProcesarCompraResponse, error) {
	if mencionNro == "" {
		return nil, fmt.Errorf("debe proporcionar mencion_nro")
	}

	pendientes, err := s.compraRepo.ListPendientes(ctx)
	if err != nil {
		return nil, err
	}

	var compra *models.Compra
	for i := range pendientes {
		if pendientes[i].RowIndex == rowIndex {
			compra = &pendientes[i]
			break
		}
	}
	if compra == nil {
		return nil, fmt.Errorf("%w: compra en fila %d", models.ErrNotFound, rowIndex)
	}

	if compra.Nombres == "" || compra.Apellidos == "" || compra.Curso == "" {
		return nil, fmt.Errorf("faltan datos requeridos en la compra: nombres, apellidos o curso")
	}

	fechaEmision := compra.FechaEmision
	if fechaEmision == "" {
		fechaEmision = time.Now().Format("2006-01-02")
	}

	cert, partial, err := s.certService.Create(ctx, &models.CreateCertificateRequest{
		Nombres:      compra.Nombres,
		Apellidos:    compra.Apellidos,
		DNI:          compra.DNI,
		Curso:        compra.Curso,
		FechaEmision: fechaEmision,
		Horas:        compra.Horas,
		MencionNro:   mencionNro,
	})
	if err != nil {
		return nil, err
	}
	if partial != nil {
		s.logger.WithField("codigo", cert.Codigo).Warn(partial.Error())
	}

	// Generar y guardar el PDF de inmediato para que la compra quede con
	// su certificado descargable
	if _, _, err := s.certService.RenderPDF(ctx, cert.Codigo); err != nil {
		s.logger.WithError(err).WithField("codigo", cert.Codigo).Warn("Compra procesada pero el PDF no se pudo generar")
	}

	if err := s.compraRepo.MarkProcesada(ctx, compra.RowIndex, cert.Codigo); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"codigo": cert.Codigo,
			"row":    compra.RowIndex,
		}).Warn("Certificado emitido pero la compra no quedó marcada como procesada")
	}

	s.logger.WithFields(logrus.Fields{
		"codigo": cert.Codigo,
		"row":    compra.RowIndex,
	}).Info("Compra procesada")

	return &models.ProcesarCompraResponse{
		Success:     true,
		Codigo:      cert.Codigo,
		Certificado: *cert,
		Message:     "Certificado generado exitosamente",
	}, nil
}

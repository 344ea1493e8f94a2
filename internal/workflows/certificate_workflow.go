package workflows

import (
	"context"
	"fmt"

	"github.com/inngest/inngestgo"
	"github.com/sirupsen/logrus"

	"github.com/cpd-labs/certificados-service/internal/email"
	"github.com/cpd-labs/certificados-service/internal/services"
)

// EventCertificateIssued es el evento emitido al crear un certificado.
const EventCertificateIssued = "certificados/certificate.issued"

// CertificateWorkflow genera y almacena el PDF de un certificado emitido
// fuera del request, y notifica por correo al participante
type CertificateWorkflow struct {
	client       inngestgo.Client
	logger       *logrus.Logger
	emailService *email.ResendService
	certService  *services.CertificateService
}

// NewCertificateWorkflow crea una nueva instancia del workflow
func NewCertificateWorkflow(client inngestgo.Client, logger *logrus.Logger, emailService *email.ResendService, certService *services.CertificateService) *CertificateWorkflow {
	return &CertificateWorkflow{
		client:       client,
		logger:       logger,
		emailService: emailService,
		certService:  certService,
	}
}

// Register registra la función del workflow con Inngest
func (w *CertificateWorkflow) Register() error {
	_, err := inngestgo.CreateFunction(
		w.client,
		inngestgo.FunctionOpts{
			ID:   "certificate-issued-notification",
			Name: "Certificate Issued Notification",
		},
		inngestgo.EventTrigger(EventCertificateIssued, nil),
		w.NotifyCertificate,
	)
	return err
}

// NotifyCertificate es la función principal del workflow: genera y guarda el
// PDF del certificado emitido y envía el correo de notificación con el
// enlace de verificación.
func (w *CertificateWorkflow) NotifyCertificate(ctx context.Context, input inngestgo.Input[CertificateIssuedInput]) (any, error) {
	codigo := input.Event.Data.Codigo

	// RenderPDF también almacena el archivo y escribe PDF_URL
	_, cert, err := w.certService.RenderPDF(ctx, codigo)
	if err != nil {
		return nil, fmt.Errorf("error rendering certificate %s: %w", codigo, err)
	}

	if w.emailService == nil || cert.Correo == "" {
		w.logger.WithField("codigo", codigo).Info("Certificate has no notification target, skipping email")
		return &CertificateIssuedOutput{Codigo: codigo, Status: "rendered"}, nil
	}

	if err := w.emailService.SendCertificateEmail(cert, w.certService.VerifyURL(codigo)); err != nil {
		return nil, err
	}

	return &CertificateIssuedOutput{Codigo: codigo, Status: "notified"}, nil
}

// CertificateIssuedInput representa el input del workflow
type CertificateIssuedInput struct {
	Codigo string `json:"codigo"`
}

// CertificateIssuedOutput representa el output del workflow
type CertificateIssuedOutput struct {
	Codigo string `json:"codigo"`
	Status string `json:"status"`
}

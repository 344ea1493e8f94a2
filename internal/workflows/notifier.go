package workflows

import (
	"context"

	"github.com/inngest/inngestgo"
	"github.com/sirupsen/logrus"

	"github.com/cpd-labs/certificados-service/internal/email"
	"github.com/cpd-labs/certificados-service/internal/models"
)

// IssueNotifier publica el evento de certificado emitido. Cuando Inngest no
// está configurado envía el correo directamente como degradación.
type IssueNotifier struct {
	client       inngestgo.Client
	emailService *email.ResendService
	logger       *logrus.Logger
}

// NewIssueNotifier crea una nueva instancia del notificador
func NewIssueNotifier(client inngestgo.Client, emailService *email.ResendService, logger *logrus.Logger) *IssueNotifier {
	return &IssueNotifier{
		client:       client,
		emailService: emailService,
		logger:       logger,
	}
}

// NotifyIssued emite el evento de certificado creado. Los fallos se registran
// y nunca interrumpen la emisión del certificado.
func (n *IssueNotifier) NotifyIssued(ctx context.Context, cert *models.Certificate, verifyURL string) {
	if n.client != nil {
		_, err := n.client.Send(ctx, inngestgo.Event{
			Name: EventCertificateIssued,
			Data: map[string]any{
				"codigo": cert.Codigo,
			},
		})
		if err != nil {
			n.logger.WithError(err).WithField("codigo", cert.Codigo).Warn("Failed to publish certificate issued event")
		}
		return
	}

	if n.emailService == nil || cert.Correo == "" {
		return
	}

	if err := n.emailService.SendCertificateEmail(cert, verifyURL); err != nil {
		n.logger.WithError(err).WithField("codigo", cert.Codigo).Warn("Failed to send certificate email")
	}
}

package email

import (
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"

	"github.com/cpd-labs/certificados-service/internal/models"
)

// ResendService maneja el envío de correos electrónicos usando Resend API
type ResendService struct {
	client    *resend.Client
	fromEmail string
	logger    *logrus.Logger
}

// NewResendService crea una nueva instancia de ResendService
func NewResendService(apiKey, fromEmail string, logger *logrus.Logger) *ResendService {
	return &ResendService{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		logger:    logger,
	}
}

// SendCertificateEmail notifica al participante que su certificado fue emitido,
// con el enlace público de verificación.
func (s *ResendService) SendCertificateEmail(cert *models.Certificate, verifyURL string) error {
	if cert.Correo == "" {
		return fmt.Errorf("certificado %s no tiene correo de destino", cert.Codigo)
	}

	subject := fmt.Sprintf("Tu certificado %s está listo", cert.Codigo)

	htmlContent := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Certificado Emitido</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 8px; }
        .content { padding: 20px; }
        .button { display: inline-block; padding: 12px 24px; background-color: #1e3a5f; color: white; text-decoration: none; border-radius: 5px; margin: 10px 5px; }
        .codigo { font-size: 18px; font-weight: bold; color: #1e3a5f; letter-spacing: 2px; }
        .footer { margin-top: 30px; padding: 20px; background-color: #f8f9fa; border-radius: 8px; font-size: 14px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Certificado Emitido</h1>
            <p class="codigo">%s</p>
        </div>

        <div class="content">
            <h2>Hola %s,</h2>

            <p>Tu certificado ha sido emitido con los siguientes datos:</p>

            <ul>
                <li><strong>Curso:</strong> %s</li>
                <li><strong>Fecha de emisión:</strong> %s</li>
                <li><strong>Horas:</strong> %s</li>
            </ul>

            <p>Puedes verificar la autenticidad de tu certificado en cualquier momento:</p>

            <div style="text-align: center; margin: 20px 0;">
                <a href="%s" class="button">Verificar certificado</a>
            </div>
        </div>

        <div class="footer">
            <p>Este es un email automático del sistema de certificados.</p>
            <p>Si tienes alguna pregunta, por favor contacta a nuestro equipo de soporte.</p>
        </div>
    </div>
</body>
</html>`,
		cert.Codigo,
		cert.NombreCompleto,
		cert.Curso,
		cert.FechaEmision,
		cert.Horas,
		verifyURL)

	request := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{cert.Correo},
		Subject: subject,
		Html:    htmlContent,
	}

	result, err := s.client.Emails.Send(request)
	if err != nil {
		return fmt.Errorf("error sending email via Resend: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"email_id": result.Id,
		"to":       cert.Correo,
		"codigo":   cert.Codigo,
	}).Info("Email sent successfully via Resend")

	return nil
}

package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CodeLength es la longitud de los códigos de verificación
const CodeLength = 12

// maxCodeAttempts limita los reintentos ante colisión de códigos
const maxCodeAttempts = 5

// CodeGenerator genera códigos de verificación deterministas a partir de los
// datos del certificado. El mismo input produce siempre el mismo código, lo
// que permite reemitir un certificado sin cambiar su URL de verificación.
type CodeGenerator struct {
	logger *logrus.Logger
	now    func() time.Time
}

// NewCodeGenerator crea una nueva instancia del generador de códigos
func NewCodeGenerator(logger *logrus.Logger) *CodeGenerator {
	return &CodeGenerator{
		logger: logger,
		now:    time.Now,
	}
}

// Generate produce un código de 12 caracteres alfanuméricos. Las partes
// vacías se descartan; sin partes utilizables se usa el timestamp en
// milisegundos, perdiendo el determinismo.
func (g *CodeGenerator) Generate(parts ...string) string {
	input := joinParts(parts)
	if input == "" {
		input = fmt.Sprintf("%d", g.now().UnixMilli())
		g.logger.Warn("Generando código sin datos de entrada, usando timestamp")
	}
	return codeFrom(input)
}

// GenerateUnique genera un código y reintenta con el input perturbado si el
// predicado exists reporta colisión
func (g *CodeGenerator) GenerateUnique(ctx context.Context, exists func(ctx context.Context, code string) (bool, error), parts ...string) (string, error) {
	input := joinParts(parts)
	if input == "" {
		input = fmt.Sprintf("%d", g.now().UnixMilli())
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		candidate := input
		if attempt > 0 {
			candidate = fmt.Sprintf("%s-%d", input, attempt)
		}
		code := codeFrom(candidate)

		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
		g.logger.WithFields(logrus.Fields{
			"code":    code,
			"attempt": attempt + 1,
		}).Warn("Colisión de código, reintentando con input perturbado")
	}
	return "", fmt.Errorf("no se pudo generar un código único tras %d intentos", maxCodeAttempts)
}

// codeFrom aplica SHA-256 al input, codifica en base64 y conserva los
// primeros 12 caracteres alfanuméricos
func codeFrom(input string) string {
	code := make([]byte, 0, CodeLength)
	for material := input; len(code) < CodeLength; {
		sum := sha256.Sum256([]byte(material))
		encoded := base64.StdEncoding.EncodeToString(sum[:])
		for i := 0; i < len(encoded) && len(code) < CodeLength; i++ {
			c := encoded[i]
			if isAlphanumeric(c) {
				code = append(code, c)
			}
		}
		// base64 de 32 bytes casi siempre rinde 12 alfanuméricos; si no,
		// se vuelve a hashear el encoding anterior
		material = encoded
	}
	return string(code)
}

func isAlphanumeric(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func joinParts(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, "-")
}

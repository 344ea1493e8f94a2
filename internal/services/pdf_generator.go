package services

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/cpd-labs/certificados-service/internal/config"
	"github.com/cpd-labs/certificados-service/internal/models"
)

// Dimensiones de página A4 apaisada en puntos
const (
	pageW = 841.89
	pageH = 595.28
)

// Posiciones calibradas contra la plantilla PNG. Todas las coordenadas son
// en puntos desde la esquina superior izquierda; los valores Y de texto son
// la línea base.
const (
	titleBoxLeft  = 135.0
	titleBoxRight = pageW - 305.0
	titleTopY     = 164.0
	titleLineGap  = 14.0
	titleMaxLines = 3
	titleStartPt  = 10.0
	titleMinPt    = 8.0

	durBoxLeft  = 42.5
	durBoxRight = 277.5
	durY        = 262.0

	modBoxLeft  = 7.5
	modBoxRight = 242.5
	modY        = 301.0
	modStartPt  = 9.0
	modMinPt    = 7.0

	periodBoxLeft  = pageW/2 - 160.0
	periodBoxRight = pageW/2 + 60.0
	periodY        = 285.0

	qrX    = pageW - 220.0
	qrY    = 165.0
	qrSize = 125.0
)

// PDFGenerator renderiza certificados PDF sobre la plantilla PNG del centro
type PDFGenerator struct {
	logger       *logrus.Logger
	templatePath string
}

// NewPDFGenerator crea una nueva instancia del renderizador
func NewPDFGenerator(cfg *config.RenderConfig, logger *logrus.Logger) *PDFGenerator {
	return &PDFGenerator{
		logger:       logger,
		templatePath: cfg.TemplatePath,
	}
}

// GenerateCertificatePDF genera el PDF del certificado con la plantilla de
// fondo, los textos calibrados y el QR de verificación. Si el QR no puede
// generarse el certificado se emite igual, sin QR.
func (g *PDFGenerator) GenerateCertificatePDF(cert *models.Certificate, verifyURL string) ([]byte, error) {
	template, err := os.ReadFile(g.templatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: plantilla en %s: %v", models.ErrAssetMissing, g.templatePath, err)
	}

	pdf := gofpdf.New("L", "pt", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(cert.Codigo, true)
	pdf.SetAuthor("Centro Profesional Docente", true)
	pdf.SetSubject(fmt.Sprintf("Certificado %s", cert.Codigo), true)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("plantilla", opts, bytes.NewReader(template))
	pdf.ImageOptions("plantilla", 0, 0, pageW, pageH, false, opts, 0, "")

	measure := func(s string, size float64) float64 {
		pdf.SetFont("Times", "B", size)
		return pdf.GetStringWidth(tr(s))
	}

	// Título (la mención), centrado y ajustado a un máximo de 3 líneas.
	// Con pocas líneas el bloque baja para quedar centrado en la caja.
	titulo := strings.TrimSpace(cert.Mencion)
	titleSize, lines := fitFontSize(titulo, titleStartPt, titleMinPt, titleBoxRight-titleBoxLeft, titleMaxLines, measure)

	extraDown := 0.0
	switch len(lines) {
	case 1:
		extraDown = 15
	case 2:
		extraDown = 6
	}

	pdf.SetFont("Times", "B", titleSize)
	pdf.SetTextColor(13, 13, 13)
	y := titleTopY + extraDown
	for _, line := range lines {
		drawCentered(pdf, tr(line), titleBoxLeft, titleBoxRight, y)
		y += titleLineGap
	}

	// Duración
	duracion := "HORAS PEDAGÓGICAS"
	if strings.TrimSpace(cert.Horas) != "" {
		duracion = fmt.Sprintf("%s HORAS PEDAGÓGICAS", strings.TrimSpace(cert.Horas))
	}
	pdf.SetFont("Times", "", 9)
	pdf.SetTextColor(44, 44, 44)
	drawCentered(pdf, tr(duracion), durBoxLeft, durBoxRight, durY)

	// Modalidad, con reducción de fuente si no entra en la caja
	modalidad := strings.TrimSpace(cert.Modalidad)
	if modalidad == "" {
		modalidad = "VIRTUAL"
	}
	modSize := modStartPt
	pdf.SetFont("Times", "", modSize)
	for modSize > modMinPt && pdf.GetStringWidth(tr(modalidad)) > modBoxRight-modBoxLeft {
		modSize -= 0.5
		pdf.SetFont("Times", "", modSize)
	}
	drawCentered(pdf, tr(modalidad), modBoxLeft, modBoxRight, modY)

	// Período
	periodo := SynthesizePeriod(cert.FechaInicio, cert.FechaTermino)
	pdf.SetFont("Times", "", 9)
	drawCentered(pdf, tr(periodo), periodBoxLeft, periodBoxRight, periodY)

	// QR de verificación
	qrPNG, err := qrcode.Encode(verifyURL, qrcode.Medium, 500)
	if err != nil {
		g.logger.WithError(err).WithField("codigo", cert.Codigo).Warn("Error generando QR, se emite el certificado sin QR")
	} else {
		qrOpts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qr", qrOpts, bytes.NewReader(qrPNG))
		pdf.ImageOptions("qr", qrX, qrY, qrSize, qrSize, false, qrOpts, 0, "")
	}

	// Código debajo del QR
	if codigo := strings.TrimSpace(cert.Codigo); codigo != "" {
		pdf.SetFont("Times", "B", 8)
		pdf.SetTextColor(30, 58, 95)
		drawCentered(pdf, tr(codigo), qrX, qrX+qrSize, qrY+qrSize)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error generando PDF del certificado %s: %w", cert.Codigo, err)
	}

	g.logger.WithFields(logrus.Fields{
		"codigo":   cert.Codigo,
		"pdf_size": buf.Len(),
	}).Info("PDF de certificado generado")
	return buf.Bytes(), nil
}

// drawCentered dibuja el texto centrado entre left y right, con la fuente y
// color vigentes del documento
func drawCentered(pdf *gofpdf.Fpdf, text string, left, right, y float64) {
	width := pdf.GetStringWidth(text)
	pdf.Text((left+right)/2-width/2, y, text)
}

// wrapText envuelve el texto por palabras para no exceder maxWidth al tamaño
// de fuente dado
func wrapText(text string, size, maxWidth float64, measure func(s string, size float64) float64) []string {
	words := strings.Fields(strings.ReplaceAll(text, "\n", " "))
	var lines []string
	current := ""
	for _, w := range words {
		test := strings.TrimSpace(current + " " + w)
		if measure(test, size) <= maxWidth {
			current = test
		} else {
			if current != "" {
				lines = append(lines, current)
			}
			current = w
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// fitFontSize reduce el tamaño de fuente de a 0.5pt hasta que el texto quepa
// en maxLines líneas o se alcance el mínimo
func fitFontSize(text string, startSize, minSize, maxWidth float64, maxLines int, measure func(s string, size float64) float64) (float64, []string) {
	size := startSize
	lines := wrapText(text, size, maxWidth, measure)
	for len(lines) > maxLines && size > minSize {
		size -= 0.5
		lines = wrapText(text, size, maxWidth, measure)
	}
	return size, lines
}

// SynthesizePeriod construye el texto del período a partir de las fechas de
// inicio y término. Con fechas en formato legible ("08 de julio del 2025")
// produce "JULIO - JULIO 2025"; si no puede extraer los meses usa las fechas
// tal cual.
func SynthesizePeriod(inicio, termino string) string {
	inicio = strings.TrimSpace(inicio)
	termino = strings.TrimSpace(termino)

	if inicio != "" && termino != "" && (strings.Contains(termino, "del") || strings.Contains(termino, "de")) {
		partesTermino := strings.Fields(termino)
		if len(partesTermino) >= 3 {
			mesTermino := strings.ToUpper(partesTermino[2])
			anio := "2025"
			if len(partesTermino) > 3 {
				anio = partesTermino[len(partesTermino)-1]
			}

			mesInicio := ""
			if partesInicio := strings.Fields(inicio); len(partesInicio) >= 3 {
				mesInicio = strings.ToUpper(partesInicio[2])
			}

			if mesInicio != "" {
				return fmt.Sprintf("%s - %s %s", mesInicio, mesTermino, anio)
			}
			return fmt.Sprintf("%s %s", mesTermino, anio)
		}
	}

	if inicio != "" && termino != "" {
		return inicio + " - " + termino
	}
	return termino
}

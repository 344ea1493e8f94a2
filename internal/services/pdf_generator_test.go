package services

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpd-labs/certificados-service/internal/config"
	"github.com/cpd-labs/certificados-service/internal/models"
)

func TestSynthesizePeriod(t *testing.T) {
	cases := []struct {
		name    string
		inicio  string
		termino string
		want    string
	}{
		{
			name:    "fechas legibles con año",
			inicio:  "24 de marzo",
			termino: "08 de julio del 2025",
			want:    "MARZO - JULIO 2025",
		},
		{
			name:    "término sin año usa 2025",
			inicio:  "24 de marzo",
			termino: "08 de julio",
			want:    "MARZO - JULIO 2025",
		},
		{
			name:    "inicio sin mes extraíble",
			inicio:  "marzo",
			termino: "08 de julio del 2025",
			want:    "JULIO 2025",
		},
		{
			name:    "fechas no legibles van tal cual",
			inicio:  "24/03/2025",
			termino: "08/07/2025",
			want:    "24/03/2025 - 08/07/2025",
		},
		{
			name:    "solo término",
			inicio:  "",
			termino: "08 de julio del 2025",
			want:    "08 de julio del 2025",
		},
		{
			name:    "sin fechas",
			inicio:  "",
			termino: "",
			want:    "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SynthesizePeriod(tc.inicio, tc.termino))
		})
	}
}

// fakeMeasure aproxima el ancho como caracteres por tamaño de fuente
func fakeMeasure(s string, size float64) float64 {
	return float64(len(s)) * size * 0.5
}

func TestWrapText(t *testing.T) {
	t.Run("texto corto queda en una línea", func(t *testing.T) {
		lines := wrapText("Gestión Pública", 10, 1000, fakeMeasure)
		assert.Equal(t, []string{"Gestión Pública"}, lines)
	})

	t.Run("texto largo se envuelve por palabras", func(t *testing.T) {
		lines := wrapText("con mención en Gestión Pública y Desarrollo Territorial", 10, 120, fakeMeasure)
		assert.Greater(t, len(lines), 1)
		for _, line := range lines {
			assert.LessOrEqual(t, fakeMeasure(line, 10), 120.0)
		}
	})

	t.Run("palabra más ancha que la caja queda sola en su línea", func(t *testing.T) {
		lines := wrapText("PALABRAEXTREMADAMENTELARGA corta", 10, 50, fakeMeasure)
		assert.Equal(t, "PALABRAEXTREMADAMENTELARGA", lines[0])
	})
}

func TestFitFontSize(t *testing.T) {
	t.Run("texto que cabe conserva el tamaño inicial", func(t *testing.T) {
		size, lines := fitFontSize("Ofimática", 10, 8, 400, 3, fakeMeasure)
		assert.Equal(t, 10.0, size)
		assert.Len(t, lines, 1)
	})

	t.Run("texto largo reduce la fuente hasta caber", func(t *testing.T) {
		text := "con mención en Gestión Pública y Desarrollo Territorial Sostenible para Gobiernos Locales"
		size, lines := fitFontSize(text, 10, 8, 150, 3, fakeMeasure)
		assert.Less(t, size, 10.0)
		assert.GreaterOrEqual(t, size, 8.0)
		assert.NotEmpty(t, lines)
	})

	t.Run("en el mínimo acepta exceder las líneas", func(t *testing.T) {
		text := "una mención con muchísimas más palabras de las que cualquier caja razonable puede contener sin desbordar"
		size, lines := fitFontSize(text, 10, 8, 60, 3, fakeMeasure)
		assert.Equal(t, 8.0, size)
		assert.Greater(t, len(lines), 3)
	})
}

func writeTestTemplate(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	path := filepath.Join(t.TempDir(), "plantilla.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestPDFGenerator_GenerateCertificatePDF(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cert := &models.Certificate{
		Codigo:       "Ab3dEf6hIj9k",
		Mencion:      "con mención en Gestión Pública",
		Horas:        "120",
		FechaInicio:  "24 de marzo",
		FechaTermino: "08 de julio del 2025",
		Modalidad:    "VIRTUAL",
	}

	t.Run("genera un PDF con la plantilla presente", func(t *testing.T) {
		gen := NewPDFGenerator(&config.RenderConfig{TemplatePath: writeTestTemplate(t)}, logger)

		data, err := gen.GenerateCertificatePDF(cert, "https://centroprofesionaldocente.com/consulta/Ab3dEf6hIj9k")
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	})

	t.Run("plantilla ausente reporta recurso faltante", func(t *testing.T) {
		gen := NewPDFGenerator(&config.RenderConfig{TemplatePath: "/no/existe/plantilla.png"}, logger)

		_, err := gen.GenerateCertificatePDF(cert, "https://centroprofesionaldocente.com/consulta/Ab3dEf6hIj9k")
		assert.True(t, errors.Is(err, models.ErrAssetMissing))
	})
}

package services

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpd-labs/certificados-service/internal/database"
	"github.com/cpd-labs/certificados-service/internal/models"
)

func newCompraService(t *testing.T, env *serviceEnv) *CompraService {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	compraRepo := database.NewCompraRepository(env.store, logger)
	return NewCompraService(compraRepo, env.certService, logger)
}

func seedCompras(env *serviceEnv) {
	env.client.sheets["cert-sheet/compras"] = [][]string{
		{"codigo", "nombres", "apellidos", "dni", "curso", "fecha_emision", "horas", "estado"},
		{"", "MARÍA", "QUISPE HUAMÁN", "44556677", "ROBÓTICA EDUCATIVA", "2025-08-01", "90", ""},
		{"YAEXISTE1234", "PEDRO", "GÓMEZ", "11223344", "OTRO CURSO", "2025-07-01", "40", "PROCESADO"},
		{"", "", "", "", "CURSO SIN DATOS", "", "", ""},
	}
}

func TestCompraServiceListPendientes(t *testing.T) {
	env := newServiceEnv(t)
	seedCompras(env)
	svc := newCompraService(t, env)

	pendientes, err := svc.ListPendientes(context.Background())
	require.NoError(t, err)

	// Solo las filas sin código cuentan como pendientes
	require.Len(t, pendientes, 2)
	assert.Equal(t, 2, pendientes[0].RowIndex)
	assert.Equal(t, "MARÍA", pendientes[0].Nombres)
	assert.Equal(t, 4, pendientes[1].RowIndex)
}

func TestCompraServiceProcesar(t *testing.T) {
	ctx := context.Background()

	t.Run("emite el certificado y marca la fila", func(t *testing.T) {
		env := newServiceEnv(t)
		seedCompras(env)
		svc := newCompraService(t, env)

		resp, err := svc.Procesar(ctx, 2, "7")
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Codigo)
		assert.Equal(t, resp.Codigo, resp.Certificado.Codigo)
		// El curso de la compra manda sobre el de la mención
		assert.Equal(t, "ROBÓTICA EDUCATIVA", resp.Certificado.Curso)
		assert.Equal(t, "MENCIÓN EN DIDÁCTICA", resp.Certificado.Mencion)

		// La fila deja de estar pendiente
		pendientes, err := svc.ListPendientes(ctx)
		require.NoError(t, err)
		require.Len(t, pendientes, 1)
		assert.Equal(t, 4, pendientes[0].RowIndex)

		row := env.client.sheets["cert-sheet/compras"][1]
		assert.Equal(t, resp.Codigo, row[0])
		assert.Equal(t, models.EstadoProcesado, row[7])
	})

	t.Run("exige la mención", func(t *testing.T) {
		env := newServiceEnv(t)
		seedCompras(env)
		svc := newCompraService(t, env)

		_, err := svc.Procesar(ctx, 2, "")
		assert.Error(t, err)
	})

	t.Run("fila inexistente retorna not found", func(t *testing.T) {
		env := newServiceEnv(t)
		seedCompras(env)
		svc := newCompraService(t, env)

		_, err := svc.Procesar(ctx, 99, "7")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("compra sin datos requeridos falla", func(t *testing.T) {
		env := newServiceEnv(t)
		seedCompras(env)
		svc := newCompraService(t, env)

		_, err := svc.Procesar(ctx, 4, "7")
		assert.Error(t, err)
	})
}

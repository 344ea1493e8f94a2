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

func newClienteService(t *testing.T, env *serviceEnv) *ClienteService {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return NewClienteService(database.NewClienteRepository(env.store, logger), logger)
}

func TestClienteService(t *testing.T) {
	ctx := context.Background()

	t.Run("lista los clientes registrados", func(t *testing.T) {
		env := newServiceEnv(t)
		svc := newClienteService(t, env)

		clientes, err := svc.List(ctx, false)
		require.NoError(t, err)
		require.Len(t, clientes, 1)
		assert.Equal(t, "MARÍA QUISPE HUAMÁN", clientes[0].NombreCompleto)
	})

	t.Run("busca por DNI normalizado", func(t *testing.T) {
		env := newServiceEnv(t)
		svc := newClienteService(t, env)

		cliente, err := svc.GetByDNI(ctx, "44.556.677")
		require.NoError(t, err)
		assert.Equal(t, "44556677", cliente.DNI)
	})

	t.Run("crea y rechaza DNI duplicado", func(t *testing.T) {
		env := newServiceEnv(t)
		svc := newClienteService(t, env)

		cliente, err := svc.Create(ctx, &models.CreateClienteRequest{
			DNI:            "99887766",
			NombreCompleto: "JOSÉ CASTILLO",
			Correo:         "jose@example.com",
			Telefono:       "911222333",
		})
		require.NoError(t, err)
		assert.Equal(t, "JOSÉ CASTILLO", cliente.NombreCompleto)

		_, err = svc.Create(ctx, &models.CreateClienteRequest{
			DNI:            "99-887-766",
			NombreCompleto: "OTRO NOMBRE",
		})
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("actualiza solo los campos enviados", func(t *testing.T) {
		env := newServiceEnv(t)
		svc := newClienteService(t, env)

		cliente, err := svc.Update(ctx, "44556677", &models.UpdateClienteRequest{
			Telefono: "955111222",
		})
		require.NoError(t, err)
		assert.Equal(t, "955111222", cliente.Celular)
		assert.Equal(t, "maria@example.com", cliente.Correo)
	})

	t.Run("elimina por DNI", func(t *testing.T) {
		env := newServiceEnv(t)
		svc := newClienteService(t, env)

		deleted, err := svc.Delete(ctx, "44556677")
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = svc.GetByDNI(ctx, "44556677")
		assert.ErrorIs(t, err, models.ErrNotFound)

		deleted, err = svc.Delete(ctx, "44556677")
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

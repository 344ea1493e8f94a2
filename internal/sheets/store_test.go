package sheets

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpd-labs/certificados-service/internal/config"
	"github.com/cpd-labs/certificados-service/internal/models"
)

// fakeRowClient implementa RowClient en memoria para pruebas
type fakeRowClient struct {
	sheets    map[string][][]string // key: spreadsheetID/worksheet
	readCalls map[string]int
	failReads bool
}

func newFakeRowClient() *fakeRowClient {
	return &fakeRowClient{
		sheets:    make(map[string][][]string),
		readCalls: make(map[string]int),
	}
}

func sheetKey(spreadsheetID, worksheet string) string {
	return spreadsheetID + "/" + worksheet
}

func (f *fakeRowClient) ReadRows(_ context.Context, spreadsheetID, worksheet string) ([][]string, error) {
	key := sheetKey(spreadsheetID, worksheet)
	f.readCalls[key]++
	if f.failReads {
		return nil, fmt.Errorf("%w: leyendo %s: conexión rechazada", models.ErrStoreUnavailable, worksheet)
	}
	return f.sheets[key], nil
}

func (f *fakeRowClient) AppendRow(_ context.Context, spreadsheetID, worksheet string, row []string) error {
	key := sheetKey(spreadsheetID, worksheet)
	f.sheets[key] = append(f.sheets[key], row)
	return nil
}

func (f *fakeRowClient) UpdateCell(_ context.Context, spreadsheetID, worksheet string, row, col int, value string) error {
	key := sheetKey(spreadsheetID, worksheet)
	rows := f.sheets[key]
	for len(rows) < row {
		rows = append(rows, nil)
	}
	for len(rows[row-1]) < col {
		rows[row-1] = append(rows[row-1], "")
	}
	rows[row-1][col-1] = value
	f.sheets[key] = rows
	return nil
}

func (f *fakeRowClient) DeleteRow(_ context.Context, spreadsheetID, worksheet string, row int) error {
	key := sheetKey(spreadsheetID, worksheet)
	rows := f.sheets[key]
	if row < 1 || row > len(rows) {
		return fmt.Errorf("%w: fila %d fuera de rango", models.ErrStoreUnavailable, row)
	}
	f.sheets[key] = append(rows[:row-1], rows[row:]...)
	return nil
}

func testSheetsConfig() *config.SheetsConfig {
	return &config.SheetsConfig{
		CertificadosID: "cert-sheet",
		MencionesID:    "menc-sheet",
		CacheTTL:       5 * time.Minute,
		WorksheetNames: map[string]string{
			config.CollectionCertificados:   "certificados",
			config.CollectionCertificadosQR: "CERTIFICADOS QR",
			config.CollectionCompras:        "compras",
			config.CollectionMenciones:      "MENCIONES",
			config.CollectionClientes:       "CLIENTES",
		},
	}
}

func newTestStore(client RowClient) *Store {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewStore(client, testSheetsConfig(), logger)
}

func TestStore_ListAll_Cache(t *testing.T) {
	ctx := context.Background()

	t.Run("colección cacheable se lee una sola vez dentro del TTL", func(t *testing.T) {
		client := newFakeRowClient()
		client.sheets["menc-sheet/MENCIONES"] = [][]string{
			{"NRO", "ESPECIALIDAD"},
			{"7", "Gestión Pública"},
		}
		store := newTestStore(client)

		for i := 0; i < 3; i++ {
			records, err := store.ListAll(ctx, config.CollectionMenciones, false)
			require.NoError(t, err)
			require.Len(t, records, 1)
		}
		assert.Equal(t, 1, client.readCalls["menc-sheet/MENCIONES"])
	})

	t.Run("TTL vencido provoca una nueva lectura remota", func(t *testing.T) {
		client := newFakeRowClient()
		client.sheets["menc-sheet/MENCIONES"] = [][]string{{"NRO"}, {"7"}}
		store := newTestStore(client)

		current := time.Now()
		store.now = func() time.Time { return current }

		_, err := store.ListAll(ctx, config.CollectionMenciones, false)
		require.NoError(t, err)

		current = current.Add(6 * time.Minute)
		_, err = store.ListAll(ctx, config.CollectionMenciones, false)
		require.NoError(t, err)

		assert.Equal(t, 2, client.readCalls["menc-sheet/MENCIONES"])
	})

	t.Run("forceRefresh ignora el cache vigente", func(t *testing.T) {
		client := newFakeRowClient()
		client.sheets["menc-sheet/MENCIONES"] = [][]string{{"NRO"}, {"7"}}
		store := newTestStore(client)

		_, err := store.ListAll(ctx, config.CollectionMenciones, false)
		require.NoError(t, err)
		_, err = store.ListAll(ctx, config.CollectionMenciones, true)
		require.NoError(t, err)

		assert.Equal(t, 2, client.readCalls["menc-sheet/MENCIONES"])
	})

	t.Run("colección transaccional nunca usa cache", func(t *testing.T) {
		client := newFakeRowClient()
		client.sheets["cert-sheet/CERTIFICADOS QR"] = [][]string{{"CODIGO"}, {"Ab3dEf6hIj9k"}}
		store := newTestStore(client)

		for i := 0; i < 2; i++ {
			_, err := store.ListAll(ctx, config.CollectionCertificadosQR, false)
			require.NoError(t, err)
		}
		assert.Equal(t, 2, client.readCalls["cert-sheet/CERTIFICADOS QR"])
	})

	t.Run("fallo remoto se reporta como almacén no disponible", func(t *testing.T) {
		client := newFakeRowClient()
		client.failReads = true
		store := newTestStore(client)

		_, err := store.ListAll(ctx, config.CollectionMenciones, false)
		assert.True(t, errors.Is(err, models.ErrStoreUnavailable))
	})
}

func TestStore_FindByKey(t *testing.T) {
	ctx := context.Background()
	client := newFakeRowClient()
	client.sheets["cert-sheet/CERTIFICADOS QR"] = [][]string{
		{"CÓDIGO", "DNI DEL CLIENTE", "ESTADO"},
		{"Ab3dEf6hIj9k", "87654321", "VALIDO"},
		{"Zz9yXx8wVv7u", "11223344", "ANULADO"},
	}
	store := newTestStore(client)

	t.Run("encuentra por campo canónico con grafía alternativa en la hoja", func(t *testing.T) {
		record, row, err := store.FindByKey(ctx, config.CollectionCertificadosQR, "dni", "11223344")
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, 3, row)
		assert.Equal(t, "ANULADO", Resolve(record, "estado"))
	})

	t.Run("la comparación ignora mayúsculas y espacios", func(t *testing.T) {
		record, _, err := store.FindByKey(ctx, config.CollectionCertificadosQR, "codigo", "  ab3def6hij9k ")
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "87654321", Resolve(record, "dni"))
	})

	t.Run("ausencia no es error", func(t *testing.T) {
		record, row, err := store.FindByKey(ctx, config.CollectionCertificadosQR, "codigo", "NoExiste0000")
		require.NoError(t, err)
		assert.Nil(t, record)
		assert.Equal(t, 0, row)
	})
}

func TestStore_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("alinea campos al header real de la hoja", func(t *testing.T) {
		client := newFakeRowClient()
		client.sheets["cert-sheet/CERTIFICADOS QR"] = [][]string{
			{"CÓDIGO", "DNI DEL CLIENTE", "CURSO"},
		}
		store := newTestStore(client)

		err := store.Append(ctx, config.CollectionCertificadosQR, map[string]string{
			"codigo": "Ab3dEf6hIj9k",
			"dni":    "87654321",
			"curso":  "Ofimática Empresarial",
		})
		require.NoError(t, err)

		rows := client.sheets["cert-sheet/CERTIFICADOS QR"]
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"Ab3dEf6hIj9k", "87654321", "Ofimática Empresarial"}, rows[1])
	})

	t.Run("hoja vacía recibe primero el header canónico", func(t *testing.T) {
		client := newFakeRowClient()
		store := newTestStore(client)

		err := store.Append(ctx, config.CollectionClientes, map[string]string{
			"dni":             "87654321",
			"nombre_completo": "María Fernanda Quispe",
		})
		require.NoError(t, err)

		rows := client.sheets["cert-sheet/CLIENTES"]
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"DNI", "NOMBRE COMPLETO", "CORREO", "CELULAR"}, rows[0])
		assert.Equal(t, []string{"87654321", "María Fernanda Quispe", "", ""}, rows[1])
	})

	t.Run("la escritura invalida el cache de la colección", func(t *testing.T) {
		client := newFakeRowClient()
		client.sheets["cert-sheet/CLIENTES"] = [][]string{{"DNI"}, {"87654321"}}
		store := newTestStore(client)

		_, err := store.ListAll(ctx, config.CollectionClientes, false)
		require.NoError(t, err)
		readsBefore := client.readCalls["cert-sheet/CLIENTES"]

		require.NoError(t, store.Append(ctx, config.CollectionClientes, map[string]string{"dni": "11223344"}))

		records, err := store.ListAll(ctx, config.CollectionClientes, false)
		require.NoError(t, err)
		assert.Greater(t, client.readCalls["cert-sheet/CLIENTES"], readsBefore)
		assert.Len(t, records, 2)
	})
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("escribe solo las celdas indicadas", func(t *testing.T) {
		client := newFakeRowClient()
		client.sheets["cert-sheet/CERTIFICADOS QR"] = [][]string{
			{"CODIGO", "ESTADO", "MOTIVO ANULACION"},
			{"Ab3dEf6hIj9k", "VALIDO", ""},
		}
		store := newTestStore(client)

		err := store.Update(ctx, config.CollectionCertificadosQR, "codigo", "Ab3dEf6hIj9k", map[string]string{
			"estado":           "ANULADO",
			"motivo_anulacion": "emisión duplicada",
		})
		require.NoError(t, err)

		row := client.sheets["cert-sheet/CERTIFICADOS QR"][1]
		assert.Equal(t, []string{"Ab3dEf6hIj9k", "ANULADO", "emisión duplicada"}, row)
	})

	t.Run("campo sin columna crea la columna con la grafía preferida", func(t *testing.T) {
		client := newFakeRowClient()
		client.sheets["cert-sheet/CERTIFICADOS QR"] = [][]string{
			{"CODIGO", "ESTADO"},
			{"Ab3dEf6hIj9k", "VALIDO"},
		}
		store := newTestStore(client)

		err := store.Update(ctx, config.CollectionCertificadosQR, "codigo", "Ab3dEf6hIj9k", map[string]string{
			"pdf_url": "https://cdn.example.com/certificados/Ab3dEf6hIj9k.pdf",
		})
		require.NoError(t, err)

		rows := client.sheets["cert-sheet/CERTIFICADOS QR"]
		assert.Equal(t, "PDF_URL", rows[0][2])
		assert.Equal(t, "https://cdn.example.com/certificados/Ab3dEf6hIj9k.pdf", rows[1][2])
	})

	t.Run("fila inexistente retorna no encontrado", func(t *testing.T) {
		client := newFakeRowClient()
		client.sheets["cert-sheet/CERTIFICADOS QR"] = [][]string{{"CODIGO"}, {"Ab3dEf6hIj9k"}}
		store := newTestStore(client)

		err := store.Update(ctx, config.CollectionCertificadosQR, "codigo", "NoExiste0000", map[string]string{"estado": "ANULADO"})
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("elimina la fila y reporta true", func(t *testing.T) {
		client := newFakeRowClient()
		client.sheets["cert-sheet/CLIENTES"] = [][]string{
			{"DNI", "NOMBRE COMPLETO"},
			{"87654321", "María Fernanda Quispe"},
			{"11223344", "Jorge Luis Paredes"},
		}
		store := newTestStore(client)

		deleted, err := store.Delete(ctx, config.CollectionClientes, "dni", "87654321")
		require.NoError(t, err)
		assert.True(t, deleted)

		rows := client.sheets["cert-sheet/CLIENTES"]
		require.Len(t, rows, 2)
		assert.Equal(t, "11223344", rows[1][0])
	})

	t.Run("fila inexistente reporta false sin error", func(t *testing.T) {
		client := newFakeRowClient()
		client.sheets["cert-sheet/CLIENTES"] = [][]string{{"DNI"}, {"87654321"}}
		store := newTestStore(client)

		deleted, err := store.Delete(ctx, config.CollectionClientes, "dni", "99999999")
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

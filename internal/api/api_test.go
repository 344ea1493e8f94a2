package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpd-labs/certificados-service/internal/auth"
	"github.com/cpd-labs/certificados-service/internal/config"
	"github.com/cpd-labs/certificados-service/internal/database"
	"github.com/cpd-labs/certificados-service/internal/models"
	"github.com/cpd-labs/certificados-service/internal/services"
	"github.com/cpd-labs/certificados-service/internal/sheets"
	"github.com/cpd-labs/certificados-service/internal/storage"
)

type fakeRowClient struct {
	sheets map[string][][]string
}

func (f *fakeRowClient) key(id, ws string) string { return id + "/" + ws }

func (f *fakeRowClient) ReadRows(_ context.Context, id, ws string) ([][]string, error) {
	rows := f.sheets[f.key(id, ws)]
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (f *fakeRowClient) AppendRow(_ context.Context, id, ws string, row []string) error {
	k := f.key(id, ws)
	f.sheets[k] = append(f.sheets[k], append([]string(nil), row...))
	return nil
}

func (f *fakeRowClient) UpdateCell(_ context.Context, id, ws string, row, col int, value string) error {
	k := f.key(id, ws)
	rows := f.sheets[k]
	for len(rows) < row {
		rows = append(rows, []string{})
	}
	for len(rows[row-1]) < col {
		rows[row-1] = append(rows[row-1], "")
	}
	rows[row-1][col-1] = value
	f.sheets[k] = rows
	return nil
}

func (f *fakeRowClient) DeleteRow(_ context.Context, id, ws string, row int) error {
	k := f.key(id, ws)
	rows := f.sheets[k]
	if row < 1 || row > len(rows) {
		return fmt.Errorf("fila fuera de rango: %d", row)
	}
	f.sheets[k] = append(rows[:row-1], rows[row:]...)
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *auth.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := &config.Config{
		Server: config.ServerConfig{BaseURL: "https://certificados.test"},
		Sheets: config.SheetsConfig{
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
		},
		JWT: config.JWTConfig{Secret: "test-secret", Expiry: time.Hour},
	}

	client := &fakeRowClient{sheets: map[string][][]string{
		"cert-sheet/CERTIFICADOS QR": {
			{"CODIGO", "DNI DEL CLIENTE", "NOMBRE COMPLETO DEL CLIENTE", "CURSO", "FECHA EMISION", "HORAS", "ESTADO", "PDF_URL"},
			{"ABC123DEF456", "44556677", "MARÍA QUISPE", "DIDÁCTICA", "2025-07-21", "120", "VALIDO", ""},
		},
		"menc-sheet/MENCIONES": {
			{"NRO", "ESPECIALIDAD", "P. CERTIFICADO", "MENCIÓN", "HORAS"},
			{"7", "EDUCACIÓN INICIAL", "DIDÁCTICA", "MENCIÓN EN DIDÁCTICA", "120"},
		},
		"cert-sheet/CLIENTES": {
			{"DNI", "NOMBRE COMPLETO", "CORREO", "CELULAR"},
		},
		"cert-sheet/compras": {
			{"codigo", "nombres", "apellidos", "dni", "curso", "fecha_emision", "horas", "estado"},
		},
	}}

	store := sheets.NewStore(client, &cfg.Sheets, logger)
	certRepo := database.NewCertificateRepository(store, logger)
	mencionRepo := database.NewMencionRepository(store, logger)
	clienteRepo := database.NewClienteRepository(store, logger)
	compraRepo := database.NewCompraRepository(store, logger)

	storageSvc, err := storage.New(&config.StorageConfig{Type: "local", Path: t.TempDir()}, cfg.Server.BaseURL, logger)
	require.NoError(t, err)

	codeGen := services.NewCodeGenerator(logger)
	pdfGen := services.NewPDFGenerator(&config.RenderConfig{TemplatePath: filepath.Join(t.TempDir(), "plantilla.png")}, logger)
	certService := services.NewCertificateService(certRepo, mencionRepo, clienteRepo, codeGen, pdfGen, storageSvc, cfg, logger)
	compraService := services.NewCompraService(compraRepo, certService, logger)
	clienteService := services.NewClienteService(clienteRepo, logger)
	mencionService := services.NewMencionService(mencionRepo, logger)

	tokens := auth.NewTokenManager(&cfg.JWT)

	apiHandler := NewAPI(certService, compraService, clienteService, mencionService, nil, tokens, nil, logger)

	router := gin.New()
	router.GET("/consulta/:codigo", apiHandler.ConsultarCertificado)
	router.POST("/api/public/buscar", apiHandler.BuscarCertificado)

	admin := router.Group("/api/admin")
	admin.Use(apiHandler.AuthMiddleware(RoleAdmin, RoleOperador))
	{
		admin.POST("/certificados", apiHandler.CreateCertificado)
		admin.GET("/certificados", apiHandler.ListCertificados)
		admin.GET("/certificados/:codigo/qr", apiHandler.GetCertificadoQR)
		admin.GET("/menciones", apiHandler.ListMenciones)
	}

	users := router.Group("/api/admin/users")
	users.Use(apiHandler.AuthMiddleware(RoleAdmin))
	{
		users.GET("", apiHandler.ListUsers)
	}

	return router, tokens
}

func bearerFor(t *testing.T, tokens *auth.TokenManager, role string) string {
	t.Helper()
	token, err := tokens.Generate(&models.User{Email: "test@example.com", Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestConsultaPublica(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("certificado existente", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/consulta/ABC123DEF456", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp models.CertificateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Found)
		assert.Equal(t, "ABC123DEF456", resp.Codigo)
		assert.Equal(t, "https://certificados.test/consulta/ABC123DEF456", resp.VerifyURL)
	})

	t.Run("certificado inexistente responde found false", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/consulta/NOEXISTE9999", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp models.CertificateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Found)
		assert.Empty(t, resp.Codigo)
	})

	t.Run("búsqueda por body", func(t *testing.T) {
		body, _ := json.Marshal(models.SearchRequest{Codigo: "ABC123DEF456"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/public/buscar", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp models.CertificateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Found)
	})

	t.Run("búsqueda sin código es un bad request", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/public/buscar", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAdminAuth(t *testing.T) {
	router, tokens := newTestRouter(t)

	t.Run("sin token responde 401", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/certificados", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token inválido responde 401", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/certificados", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("operador accede al panel", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/certificados", nil)
		req.Header.Set("Authorization", bearerFor(t, tokens, RoleOperador))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("operador no accede a usuarios", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		req.Header.Set("Authorization", bearerFor(t, tokens, RoleOperador))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestAdminCertificados(t *testing.T) {
	router, tokens := newTestRouter(t)
	authHeader := bearerFor(t, tokens, RoleAdmin)

	t.Run("emite un certificado", func(t *testing.T) {
		body, _ := json.Marshal(models.CreateCertificateRequest{
			NombreCompleto: "JOSÉ CASTILLO RAMOS",
			DNI:            "11223344",
			MencionNro:     "7",
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/admin/certificados", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", authHeader)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp models.CertificateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Found)
		assert.Len(t, resp.Codigo, 12)
		assert.Empty(t, resp.PartialWrite)
	})

	t.Run("código duplicado responde 409", func(t *testing.T) {
		body, _ := json.Marshal(models.CreateCertificateRequest{
			Codigo:         "ABC123DEF456",
			NombreCompleto: "OTRA PERSONA",
			Curso:          "DIDÁCTICA",
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/admin/certificados", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", authHeader)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("entrega el QR como PNG", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/certificados/ABC123DEF456/qr", nil)
		req.Header.Set("Authorization", authHeader)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "qr_ABC123DEF456.png")
		// Firma PNG
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
	})

	t.Run("QR de certificado inexistente responde 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/certificados/NOEXISTE9999/qr", nil)
		req.Header.Set("Authorization", authHeader)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("lista las menciones", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/menciones", nil)
		req.Header.Set("Authorization", authHeader)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp models.MencionListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Total)
	})
}

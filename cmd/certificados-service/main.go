package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cpd-labs/certificados-service/internal/api"
	"github.com/cpd-labs/certificados-service/internal/auth"
	"github.com/cpd-labs/certificados-service/internal/config"
	"github.com/cpd-labs/certificados-service/internal/database"
	"github.com/cpd-labs/certificados-service/internal/email"
	"github.com/cpd-labs/certificados-service/internal/services"
	"github.com/cpd-labs/certificados-service/internal/sheets"
	"github.com/cpd-labs/certificados-service/internal/storage"
	"github.com/cpd-labs/certificados-service/internal/workflows"
)

func main() {
	// Cargar configuración
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Configurar logging
	logger := setupLogger(cfg)
	logger.Info("Starting Certificados Service...")

	// Configurar modo de Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Conectar a la base de datos de usuarios
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	// Conectar a Redis (rate limiting; la API funciona sin él)
	redis, err := database.ConnectRedis(cfg)
	if err != nil {
		logger.Warnf("Error connecting to Redis: %v", err)
		redis = nil
	} else {
		defer redis.Close()
	}

	// Conectar al almacén remoto (Google Sheets), el sistema de registro
	ctx := context.Background()
	sheetsClient, err := sheets.NewGoogleClient(ctx, &cfg.Sheets, logger)
	if err != nil {
		logger.Fatalf("Error connecting to Google Sheets: %v", err)
	}
	store := sheets.NewStore(sheetsClient, &cfg.Sheets, logger)

	// Inicializar almacenamiento de PDFs
	storageSvc, err := storage.New(&cfg.Storage, cfg.Server.BaseURL, logger)
	if err != nil {
		logger.Fatalf("Error initializing storage: %v", err)
	}

	// Inicializar repositorios
	certRepo := database.NewCertificateRepository(store, logger)
	mencionRepo := database.NewMencionRepository(store, logger)
	clienteRepo := database.NewClienteRepository(store, logger)
	compraRepo := database.NewCompraRepository(store, logger)
	userRepo := database.NewUserRepository(db, logger)

	// Preparar la tabla de usuarios y el admin inicial
	if err := userRepo.EnsureSchema(ctx); err != nil {
		logger.Fatalf("Error preparing users schema: %v", err)
	}

	// Inicializar servicio de Resend
	var resendService *email.ResendService
	if cfg.Email.ResendAPIKey != "" {
		resendService = email.NewResendService(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, logger)
		logger.Info("Resend service initialized successfully")
	} else {
		logger.Warn("Resend API key not provided, email service will not be available")
	}

	// Inicializar servicios
	codeGen := services.NewCodeGenerator(logger)
	pdfGen := services.NewPDFGenerator(&cfg.Render, logger)
	certService := services.NewCertificateService(certRepo, mencionRepo, clienteRepo, codeGen, pdfGen, storageSvc, cfg, logger)
	compraService := services.NewCompraService(compraRepo, certService, logger)
	clienteService := services.NewClienteService(clienteRepo, logger)
	mencionService := services.NewMencionService(mencionRepo, logger)

	tokens := auth.NewTokenManager(&cfg.JWT)
	userService := services.NewUserService(userRepo, tokens, logger)

	if err := userService.SeedAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logger.Warnf("Error seeding admin user: %v", err)
	}

	// Inicializar cliente de Inngest y registrar workflows
	inngestClient, err := workflows.NewInngestClient(cfg, logger)
	if err != nil {
		logger.Warnf("Error initializing Inngest client: %v", err)
		inngestClient = nil
	}

	if inngestClient != nil {
		if err := inngestClient.RegisterWorkflows(resendService, certService); err != nil {
			logger.Warnf("Error registering workflows: %v", err)
		}
	} else {
		logger.Warn("Inngest credentials not provided, workflows will not be available")
	}

	// Conectar el notificador de emisiones
	if inngestClient != nil {
		certService.SetNotifier(workflows.NewIssueNotifier(inngestClient.GetClient(), resendService, logger))
	} else {
		certService.SetNotifier(workflows.NewIssueNotifier(nil, resendService, logger))
	}

	// Inicializar API
	apiHandler := api.NewAPI(
		certService,
		compraService,
		clienteService,
		mencionService,
		userService,
		tokens,
		redis,
		logger,
	)

	// Configurar router
	router := setupRouter(apiHandler, inngestClient, cfg)

	// Crear servidor HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Canal para señales de terminación
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Iniciar servidor en goroutine
	go func() {
		logger.Infof("Server starting on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	// Esperar señal de terminación
	<-quit
	logger.Info("Shutting down server...")

	// Contexto con timeout para shutdown graceful
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown graceful del servidor
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// setupLogger configura el logger según la configuración
func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	// Configurar nivel de log
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Configurar formato
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// setupRouter configura el router principal
func setupRouter(apiHandler *api.API, inngestClient *workflows.InngestClient, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Middleware global
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Middleware de CORS para desarrollo
	if cfg.IsDevelopment() {
		router.Use(func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}

			c.Next()
		})
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "certificados-service",
			"version":   "1.0.0",
		})
	})

	// PDFs servidos desde disco en modo local
	if cfg.Storage.Type == "local" {
		router.Static("/uploads/certificados", cfg.Storage.Path)
	}

	// Endpoint de ejecución de workflows
	if inngestClient != nil {
		router.Any("/api/inngest", gin.WrapH(inngestClient.GetClient().Serve()))
	}

	rateLimit := apiHandler.RateLimitMiddleware(int64(cfg.RateLimit.PerMinute), time.Minute)

	// Verificación pública por enlace del QR
	router.GET("/consulta/:codigo", rateLimit, apiHandler.ConsultarCertificado)

	// API pública
	public := router.Group("/api/public")
	public.Use(rateLimit)
	{
		public.GET("/certificados/:codigo", apiHandler.ConsultarCertificado)
		public.POST("/buscar", apiHandler.BuscarCertificado)
		public.GET("/certificados/:codigo/pdf", apiHandler.DownloadCertificadoPDF)
	}

	// Autenticación
	router.POST("/api/auth/login", rateLimit, apiHandler.Login)

	// Endpoints ADMIN (protegidos)
	admin := router.Group("/api/admin")
	admin.Use(apiHandler.AuthMiddleware(api.RoleAdmin, api.RoleOperador))
	{
		// Certificados
		admin.POST("/certificados", apiHandler.CreateCertificado)
		admin.GET("/certificados", apiHandler.ListCertificados)
		admin.GET("/certificados/:codigo", apiHandler.GetCertificado)
		admin.PUT("/certificados/:codigo", apiHandler.UpdateCertificado)
		admin.POST("/certificados/:codigo/anular", apiHandler.AnularCertificado)
		admin.GET("/certificados/:codigo/qr", apiHandler.GetCertificadoQR)
		admin.GET("/certificados/:codigo/pdf", apiHandler.DownloadCertificadoPDF)

		// Compras
		admin.GET("/compras/pendientes", apiHandler.ListComprasPendientes)
		admin.POST("/compras/:row/procesar", apiHandler.ProcesarCompra)

		// Menciones
		admin.GET("/menciones", apiHandler.ListMenciones)
		admin.GET("/menciones/:nro", apiHandler.GetMencion)

		// Clientes
		admin.GET("/clientes", apiHandler.ListClientes)
		admin.GET("/clientes/:dni", apiHandler.GetCliente)
		admin.POST("/clientes", apiHandler.CreateCliente)
		admin.PUT("/clientes/:dni", apiHandler.UpdateCliente)
		admin.DELETE("/clientes/:dni", apiHandler.DeleteCliente)
	}

	// Gestión de usuarios (solo admin)
	users := router.Group("/api/admin/users")
	users.Use(apiHandler.AuthMiddleware(api.RoleAdmin))
	{
		users.GET("", apiHandler.ListUsers)
		users.POST("", apiHandler.CreateUser)
	}

	return router
}

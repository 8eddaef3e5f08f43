package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tu-usuario/facturacion-erp/internal/application/auth"
	"github.com/tu-usuario/facturacion-erp/internal/application/billing"
	"github.com/tu-usuario/facturacion-erp/internal/application/inventory"
	"github.com/tu-usuario/facturacion-erp/internal/application/usecase"
	"github.com/tu-usuario/facturacion-erp/internal/infrastructure/notify"
	infrapdf "github.com/tu-usuario/facturacion-erp/internal/infrastructure/pdf"
	"github.com/tu-usuario/facturacion-erp/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/facturacion-erp/internal/interfaces/http"
	"github.com/tu-usuario/facturacion-erp/pkg/config"
	"github.com/tu-usuario/facturacion-erp/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewInventoryMovementRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	quoteRepo := postgres.NewQuoteRepository(pool)
	purchaseRepo := postgres.NewPurchaseRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	notifier := notify.NewMailNotifier(cfg.Mail, log)
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	productUC := usecase.NewProductUseCase(productRepo, txRunner)
	customerUC := usecase.NewCustomerUseCase(customerRepo)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo)
	userUC := usecase.NewUserUseCase(userRepo)
	inventoryUC := inventory.NewUseCase(txRunner, productRepo, movementRepo, log)
	invoiceUC := billing.NewInvoiceUseCase(
		txRunner, customerRepo, productRepo, invoiceRepo, paymentRepo,
		notifier, pdfGenerator, cfg.Tax.Rate, log,
	)
	paymentUC := billing.NewPaymentUseCase(txRunner, paymentRepo, invoiceRepo, log)
	quoteUC := billing.NewQuoteUseCase(
		txRunner, quoteRepo, customerRepo, productRepo, invoiceRepo, cfg.Tax.Rate, log,
	)
	purchaseUC := billing.NewPurchaseUseCase(
		txRunner, purchaseRepo, supplierRepo, productRepo, cfg.Tax.Rate, log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Facturación ERP API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   productUC,
		CustomerUC:  customerUC,
		SupplierUC:  supplierUC,
		UserUC:      userUC,
		InventoryUC: inventoryUC,
		InvoiceUC:   invoiceUC,
		PaymentUC:   paymentUC,
		QuoteUC:     quoteUC,
		PurchaseUC:  purchaseUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	// Expiración diaria de cotizaciones vencidas.
	expireCtx, stopExpirer := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-expireCtx.Done():
				return
			case <-ticker.C:
				if _, err := quoteUC.MarkExpired(expireCtx); err != nil {
					log.Error().Err(err).Msg("expiración de cotizaciones")
				}
			}
		}
	}()

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopExpirer()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

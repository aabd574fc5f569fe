package main

import (
	"context"
	"log"
	"os"

	"github.com/mkellijah10/Oillabz/external/abstractapi"
	"github.com/mkellijah10/Oillabz/external/resend"
	"github.com/mkellijah10/Oillabz/external/square"
	"github.com/mkellijah10/Oillabz/external/stripe"

	"github.com/mkellijah10/Oillabz/internal/config"
	"github.com/mkellijah10/Oillabz/internal/db"
	"github.com/mkellijah10/Oillabz/internal/repository"
	"github.com/mkellijah10/Oillabz/internal/services"
	"github.com/mkellijah10/Oillabz/internal/storage"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// ======================
	// INFRA
	// ======================
	var store storage.KV
	var payments services.PaymentRecorder

	if cfg.DatabaseURL != "" {
		pool, err := db.Connect()
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()
		if err := db.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatal(err)
		}
		store = repository.NewStorageRepository(pool)
		payments = repository.NewPaymentRepository(pool)
	} else {
		log.Println("DATABASE_URL not set, using in-memory storage")
		store = storage.NewMemory()
		payments = repository.NewMemoryPaymentRepository()
	}

	// ======================
	// EXTERNALS
	// ======================
	var emailValidator services.EmailValidator
	if os.Getenv("USE_EMAIL_VALIDATION") == "true" {
		emailValidator, err = abstractapi.NewAbstractEmailValidator(os.Getenv("ABSTRACT_EMAIL_API_KEY"))
		if err != nil {
			log.Fatal(err)
		}
	} else {
		emailValidator = services.NewLocalValidator()
	}

	var mailer services.OrderMailer
	if cfg.Resend.APIKey != "" {
		mailer, err = resend.NewResendMailer(cfg.Resend.APIKey, cfg.Resend.From)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		log.Println("RESEND_API_KEY not set, order notifications disabled")
	}

	stripeClient := stripe.NewClient(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)

	// ======================
	// SERVICES
	// ======================
	catalogSvc := services.NewCatalogService()
	cartSvc := services.NewCartService(store)
	checkoutSvc := services.NewCheckoutService(store, cartSvc, catalogSvc)
	orderSvc := services.NewOrderService(mailer, cfg.Resend.MerchantEmail)
	contactSvc := services.NewContactService(mailer, cfg.Resend.MerchantEmail)

	var adapter services.PaymentAdapter
	switch cfg.PaymentProvider {
	case "stripe":
		adapter = services.NewStripeAdapter(stripeClient, cfg.BaseURL)
	case "square":
		adapter = services.NewSquareAdapter(
			square.NewClient(cfg.Square.BaseURL, cfg.Square.AccessToken, cfg.Square.LocationID),
		)
	default:
		log.Fatalf("unknown payment provider %q", cfg.PaymentProvider)
	}

	paymentSvc := services.NewPaymentService(adapter, stripeClient, payments, cartSvc, checkoutSvc, orderSvc)

	// ======================
	// ECHO
	// ======================
	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	api := e.Group("/store")

	// ======================
	// ROUTES (ONLY REGISTRATION)
	// ======================
	registerProductRoutes(api, catalogSvc)
	registerCartRoutes(api, cartSvc, checkoutSvc)
	registerCheckoutRoutes(api, checkoutSvc, emailValidator)
	registerPaymentRoutes(api, paymentSvc)
	registerOrderRoutes(api, orderSvc)
	registerContactRoutes(api, contactSvc)

	// ======================
	// SERVER
	// ======================
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

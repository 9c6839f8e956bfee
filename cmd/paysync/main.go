package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/regware/paysync/app/repository"
	"github.com/regware/paysync/internal/pkg/cache"
	"github.com/regware/paysync/internal/pkg/database"
	"github.com/regware/paysync/internal/pkg/env"
	"github.com/regware/paysync/internal/pkg/jobqueue"
	"github.com/regware/paysync/internal/pkg/reconcile"
	"github.com/regware/paysync/internal/pkg/router"
	"github.com/regware/paysync/internal/pkg/webhook"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/paysync to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	// background webhook processing
	startJobQueue()

	// init fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 1048576, // 1 MiB is plenty for provider payloads
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			"admin": env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	return app
}

// startJobQueue builds the dispatcher the workers run deliveries through and
// starts the manager. Requests pick up the running manager via GetManager.
func startJobQueue() {
	repos := repository.GetGlobalRepositories()

	engine := reconcile.NewEngine(reconcile.ConfigFromEnv(), repos.Reconciliation, repos.Payment, repos.Registration)
	propagator := webhook.NewRegistrationPropagator(repos.Registration)
	dispatcher := webhook.NewDispatcher(
		repos.WebhookEvent,
		webhook.NewPaymentSynchronizer(repos.Payment, repos.Customer, repos.Refund, propagator, engine),
		webhook.NewCustomerSynchronizer(repos.Customer),
		webhook.NewRefundSynchronizer(repos.Refund, repos.Payment),
	)

	manager := jobqueue.InitManager(dispatcher, repos.WebhookEvent)
	manager.Start()
}

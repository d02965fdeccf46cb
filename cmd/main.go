package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tenderhub/procurement-service/internal/db"
	"github.com/tenderhub/procurement-service/internal/handlers"
	"github.com/tenderhub/procurement-service/internal/repository"
	"github.com/tenderhub/procurement-service/internal/router"
	"github.com/tenderhub/procurement-service/internal/router/config"
	"github.com/tenderhub/procurement-service/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	runDBMigration(cfg.MigrationURL, cfg.PostgresConn)

	dbPool, err := db.InitDb(cfg)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer dbPool.Close()

	logger := log.New(os.Stdout, "INFO: ", log.LstdFlags)

	tenderRepo := repository.NewPostgresTenderRepository(dbPool)
	bidRepo := repository.NewPostgresBidRepository(dbPool)
	accountRepo := repository.NewPostgresAccountRepository(dbPool)
	criteriaRepo := repository.NewPostgresCriteriaRepository(dbPool)

	notifier := services.NewNotifier(logger)

	identityService := services.NewIdentityService(accountRepo)
	registrationService := services.NewRegistrationService(accountRepo, notifier)
	tenderService := services.NewTenderService(tenderRepo, bidRepo, notifier)
	bidService := services.NewBidService(bidRepo, tenderRepo, criteriaRepo, notifier)
	awardService := services.NewAwardService(tenderRepo, bidRepo, notifier)

	tenderHandler := handlers.NewTenderHandler(tenderService, awardService, identityService, logger, 5*time.Second)
	bidHandler := handlers.NewBidHandler(bidService, identityService, logger, 5*time.Second)
	accountHandler := handlers.NewAccountHandler(registrationService, logger, 5*time.Second)

	routes := router.InitRoutes(tenderHandler, bidHandler, accountHandler)

	log.Printf("server is listening on %s...", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, routes); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func runDBMigration(migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		log.Fatal("cannot create a new migrate instance", err)
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("failed to run migrate up:", err)
	}
	log.Println("db migrated successfully")
}

package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"humboard/api"
	"humboard/config"
	"humboard/database"
	"humboard/events"
	"humboard/repository"
	"humboard/service"

	"github.com/robfig/cron/v3"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting humboard...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	log.Println("Initializing event bus...")
	eventBus := events.NewBus()
	log.Println("Event bus initialized successfully")

	// Initialize unit of work factory
	log.Println("Initializing unit of work factory...")
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	log.Println("Unit of work factory initialized successfully")

	// Initialize services
	log.Println("Initializing services...")
	userService := service.NewUserService(uowFactory)
	questionService := service.NewQuestionService(uowFactory)
	answerService := service.NewAnswerService(uowFactory)
	voteService := service.NewVoteService(uowFactory)
	adoptionService := service.NewAdoptionService(uowFactory)
	auditService := service.NewAuditService(uowFactory, repository.NewAuditRunRepository(db))
	log.Println("Services initialized successfully")

	// Schedule the daily ledger audit unless disabled
	var scheduler *cron.Cron
	if cfg.AuditSchedule != "" {
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(cfg.AuditSchedule, func() {
			if _, err := auditService.RunAudit(context.Background()); err != nil {
				log.Printf("Ledger audit failed: %v", err)
			}
		}); err != nil {
			return fmt.Errorf("failed to schedule ledger audit: %w", err)
		}
		scheduler.Start()
		log.Printf("Ledger audit scheduled: %s", cfg.AuditSchedule)
	}

	// Initialize HTTP server
	log.Println("Initializing HTTP server...")
	server := api.NewServer(cfg, userService, questionService, answerService, voteService, adoptionService)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()
	log.Printf("Server is running on %s in %s mode...", cfg.ListenAddr, cfg.Environment)

	// Wait for context cancellation or a server failure
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}

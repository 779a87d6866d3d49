package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rabbitmq/amqp091-go"

	"github.com/growthkit/leadflow/internal/infra/database"
	"github.com/growthkit/leadflow/internal/infra/http/handlers"
	"github.com/growthkit/leadflow/internal/infra/http/middleware"
	"github.com/growthkit/leadflow/internal/infra/integration/notion"
	"github.com/growthkit/leadflow/internal/infra/integration/resend"
	"github.com/growthkit/leadflow/internal/infra/integration/serper"
	"github.com/growthkit/leadflow/internal/infra/mail"
	"github.com/growthkit/leadflow/internal/infra/queue"
	"github.com/growthkit/leadflow/internal/infra/worker"
	"github.com/growthkit/leadflow/internal/usecase"
)

func main() {
	godotenv.Load()

	// Capability adapters. Every credential comes from the environment;
	// nothing in the workflows ever sees or forwards a key.
	search := serper.NewClient(os.Getenv("SERPER_API_KEY"), os.Getenv("SERPER_URL"))
	parser := serper.NewMapper()

	store, db := buildStore()
	delivery := buildDelivery()

	session := usecase.NewSession()
	outreach := usecase.NewOutreachWorkflow(session, store, delivery)

	// Handoff channel: RabbitMQ when configured, in-process otherwise.
	var publisher usecase.HandoffPublisher
	var rabbit *queue.RabbitMQ
	if host := os.Getenv("RABBITMQ_HOST"); host != "" {
		var err error
		rabbit, err = queue.NewRabbitMQ(
			os.Getenv("RABBITMQ_USER"), os.Getenv("RABBITMQ_PASS"),
			host, envOr("RABBITMQ_PORT", "5672"),
		)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		defer rabbit.Conn.Close()
		defer rabbit.Ch.Close()

		publisher = queue.NewProducer(rabbit.Conn, rabbit.Ch)

		worker := queue.NewWorker(rabbit.Ch, outreach)
		go worker.Start(queue.QueueName)
	} else {
		publisher = &usecase.InProcessHandoff{Receiver: outreach}
	}

	discovery := usecase.NewDiscoveryWorkflow(session, search, parser, publisher)

	// Background delivery-report poller, off by default.
	if raw := os.Getenv("REPORT_POLL_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("REPORT_POLL_INTERVAL: %v", err)
		}
		go worker.NewReportWorker(outreach, interval).Start(context.Background())
	}

	discoveryHandler := handlers.NewDiscoveryHandler(discovery)
	outreachHandler := handlers.NewOutreachHandler(outreach)

	var rabbitConn *amqp091.Connection
	if rabbit != nil {
		rabbitConn = rabbit.Conn
	}
	healthHandler := handlers.NewHealthHandler(db, rabbitConn)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
	}))

	r.Route("/discovery", discoveryHandler.Routes)
	r.Route("/outreach", outreachHandler.Routes)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := ":" + envOr("PORT", "8080")
	log.Printf("leadflow API listening on %s (session %s)", port, session.ID)
	if err := http.ListenAndServe(port, r); err != nil {
		log.Fatal(err)
	}
}

// buildStore picks the lead store provider. Notion is the default; Postgres
// serves deployments that keep leads in their own database.
func buildStore() (usecase.LeadStore, *sql.DB) {
	if os.Getenv("STORE_PROVIDER") == "postgres" {
		db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		return database.NewLeadStore(db), db
	}
	return notion.NewClient(os.Getenv("NOTION_API_KEY"), os.Getenv("NOTION_URL")), nil
}

// buildDelivery picks the email provider. Resend is the default; SMTP covers
// environments without it (no scheduling, update or cancel support).
func buildDelivery() usecase.EmailDelivery {
	if os.Getenv("DELIVERY_PROVIDER") == "smtp" {
		port, err := strconv.Atoi(envOr("MAIL_PORT", "587"))
		if err != nil {
			log.Fatalf("MAIL_PORT: %v", err)
		}
		return mail.NewSMTPSender(os.Getenv("MAIL_HOST"), port, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"))
	}
	return resend.NewClient(os.Getenv("RESEND_API_KEY"), os.Getenv("RESEND_URL"))
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

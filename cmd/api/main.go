package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maximepasquier/leadflow-api/internal/infra/database"
	"github.com/maximepasquier/leadflow-api/internal/infra/http/handlers"
	"github.com/maximepasquier/leadflow-api/internal/infra/http/middleware"
	"github.com/maximepasquier/leadflow-api/internal/infra/integration/enrichment"
	"github.com/maximepasquier/leadflow-api/internal/infra/mail"
	"github.com/maximepasquier/leadflow-api/internal/infra/queue"
	"github.com/maximepasquier/leadflow-api/internal/infra/worker"
	"github.com/maximepasquier/leadflow-api/internal/usecase"
)

func main() {
	godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		os.Getenv("RABBITMQ_USER"), os.Getenv("RABBITMQ_PASS"),
		os.Getenv("RABBITMQ_HOST"), os.Getenv("RABBITMQ_PORT"),
	)
	if err != nil {
		panic(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositories
	leadRepo := database.NewLeadRepository(db)
	messageRepo := database.NewMessageRepository(db)

	// 2. Gateways et adapters
	enricher := enrichment.NewClient(os.Getenv("ENRICHMENT_API_KEY"), os.Getenv("ENRICHMENT_URL"))
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	mailSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"), 587, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
	)

	// 3. Workers (file de relances + détection des leads silencieux)
	followUpWorker := queue.NewWorker(rabbitMQ.Ch, mailSender, leadRepo)
	go followUpWorker.Start(queue.QueueName)

	relanceWorker := worker.NewRelanceWorker(db)
	go relanceWorker.Start(ctx)

	// 4. UseCases
	chatService := usecase.NewChatService(
		usecase.NewKeywordClassifier(),
		usecase.NewSearchCache(),
		enricher,
		usecase.NewLeadPersister(leadRepo),
		leadRepo,
		messageRepo,
		producer,
	)

	// 5. Handlers
	chatHandler := handlers.NewChatHandler(chatService)
	leadHandler := handlers.NewLeadHandler(leadRepo)
	webhookHandler := handlers.NewWebhookHandler(leadRepo)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn, os.Getenv("ENRICHMENT_API_KEY") != "")

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	r.Post("/chat", chatHandler.Handle)
	r.Get("/leads", leadHandler.List)
	r.Post("/leads/capture", leadHandler.CaptureLead)
	r.Post("/webhook/email", webhookHandler.HandleEmailEvent)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := ":8080"
	log.Printf("🔥 Serveur LeadFlow en écoute sur le port %s", port)
	http.ListenAndServe(port, r)
}

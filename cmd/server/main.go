// cmd/server/main.go
package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/Tasknova/What-app-Nandlal-sub001/internal/config"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/db"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/handler"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/provider"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/queue"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/repository"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg := config.Load()
	db.Init()

	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	messageRepo := &repository.MessageRepository{DB: db.DB}
	contactRepo := &repository.ContactRepository{DB: db.DB}
	clientRepo := &repository.ClientRepository{DB: db.DB}
	templateRepo := &repository.TemplateRepository{DB: db.DB}
	receiptRepo := &repository.ReceiptLogRepository{DB: db.DB}

	dispatcher := &service.Dispatcher{
		Messages: messageRepo,
		Sender:   provider.NewHTTPSender(cfg.ProviderBaseURL),
	}

	reconciler := &service.Reconciler{
		Messages:  messageRepo,
		Campaigns: campaignRepo,
		Receipts:  receiptRepo,
	}

	// With AMQP_URL set the worker binary consumes the dispatch queue; without
	// it the server runs the whole pipeline in-process on an in-memory queue.
	var q queue.Queue
	if cfg.AMQPURL != "" {
		amqpQueue, err := queue.NewAMQPQueue(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("failed to connect to AMQP: %v", err)
		}
		defer amqpQueue.Close()
		q = amqpQueue
	} else {
		q = queue.NewInMemoryQueue()
	}

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		TemplateRepo: templateRepo,
		ContactRepo:  contactRepo,
		Queue:        q,
	}

	if cfg.AMQPURL == "" {
		scheduler := &service.Scheduler{
			Campaigns:         campaignRepo,
			Templates:         templateRepo,
			Contacts:          contactRepo,
			Clients:           clientRepo,
			Dispatcher:        dispatcher,
			SendDelay:         cfg.SendDelay,
			StuckSendingAfter: cfg.StuckSendingAfter,
		}
		service.StartDispatchSubscriber(q, scheduler)
		go scheduler.Run(context.Background(), cfg.SchedulerInterval)
	}

	campaignHandler := &handler.CampaignHandler{Service: campaignService}
	messageHandler := &handler.MessageHandler{Dispatcher: dispatcher, Clients: clientRepo}
	webhookHandler := &handler.WebhookHandler{Reconciler: reconciler}

	r := chi.NewRouter()

	// Campaign routes
	r.Post("/campaigns", campaignHandler.CreateCampaign)
	r.Get("/campaigns", campaignHandler.ListCampaigns)
	r.Get("/campaigns/{id}", campaignHandler.GetCampaign)
	r.Post("/campaigns/{id}/send", campaignHandler.SendCampaign)
	r.Post("/campaigns/{id}/personalized-preview", campaignHandler.PersonalizedPreview)

	// Ad hoc sends and provider callbacks
	r.Post("/messages/send", messageHandler.SendMessage)
	r.Post("/webhook/delivery", webhookHandler.DeliveryReceipt)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	log.Infof("🚀 Server running on :%s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}

// cmd/worker/main.go
package main

import (
	"context"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/Tasknova/What-app-Nandlal-sub001/internal/config"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/db"
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

	dispatcher := &service.Dispatcher{
		Messages: messageRepo,
		Sender:   provider.NewHTTPSender(cfg.ProviderBaseURL),
	}

	scheduler := &service.Scheduler{
		Campaigns:         campaignRepo,
		Templates:         templateRepo,
		Contacts:          contactRepo,
		Clients:           clientRepo,
		Dispatcher:        dispatcher,
		SendDelay:         cfg.SendDelay,
		StuckSendingAfter: cfg.StuckSendingAfter,
	}

	if cfg.AMQPURL != "" {
		amqpQueue, err := queue.NewAMQPQueue(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("failed to connect to AMQP: %v", err)
		}
		defer amqpQueue.Close()
		service.StartDispatchSubscriber(amqpQueue, scheduler)
		log.Info("worker consuming campaign dispatch queue")
	}

	log.Infof("worker running, scheduler interval %s", cfg.SchedulerInterval)
	scheduler.Run(context.Background(), cfg.SchedulerInterval)
}

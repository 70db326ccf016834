// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/adsofthq/adtrack-backend/internal/controller"
	"github.com/adsofthq/adtrack-backend/internal/db"
	"github.com/adsofthq/adtrack-backend/internal/events"
	"github.com/adsofthq/adtrack-backend/internal/repository"
	"github.com/adsofthq/adtrack-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	// Init DB
	db.Init()

	adRepo := &repository.AdRecordRepository{DB: db.DB}
	followUpRepo := &repository.FollowUpRepository{DB: db.DB}

	// Change events go to RabbitMQ when configured, otherwise are dropped.
	var publisher events.Publisher = events.NoopPublisher{}
	if url := os.Getenv("AMQP_URL"); url != "" {
		p, err := events.NewAMQPPublisher(url, "ad_updates")
		if err != nil {
			log.Println("⚠️ AMQP unavailable, change events disabled:", err)
		} else {
			publisher = p
			defer p.Close()
		}
	}

	scheduler := &service.FollowUpScheduler{
		FollowUpRepo: followUpRepo,
		AdRecordRepo: adRepo,
	}
	adService := &service.AdService{
		AdRecordRepo: adRepo,
		Scheduler:    scheduler,
		Events:       publisher,
	}
	poller := &service.Poller{AdRecordRepo: adRepo}

	adController := &controller.AdController{AdService: adService}
	followUpController := &controller.FollowUpController{Scheduler: scheduler}
	pollController := &controller.PollController{Poller: poller}

	// Daily sweep at 00:05: complete expired ads, release expired holds,
	// fill missing follow-ups. The sweeper CLI covers manual runs.
	c := cron.New()
	if _, err := c.AddFunc("5 0 * * *", func() {
		log.Println("🕐 Running daily sweep...")
		res, err := adService.RunDailySweep(time.Now())
		if err != nil {
			log.Println("❌ Daily sweep failed:", err)
			return
		}
		log.Printf("✅ Daily sweep done: %d completed, %d holds released, %d follow-ups created",
			res.Completed, res.HoldsReleased, res.FollowUpsCreated)
	}); err != nil {
		log.Fatal("failed to schedule daily sweep:", err)
	}
	c.Start()
	defer c.Stop()

	r := chi.NewRouter()

	// Ad workflow routes
	r.Post("/ads", adController.CreateEnquiry)
	r.Get("/ads", adController.ListAds)
	r.Get("/ads/lookup", adController.LookupByMobile)
	r.Get("/ads/{id}", adController.GetAd)
	r.Put("/ads/{id}", adController.EditEnquiry)
	r.Post("/ads/{id}/payment", adController.SubmitPayment)
	r.Post("/ads/{id}/verify", adController.VerifyAndActivate)
	r.Post("/ads/{id}/hold", adController.PlaceHold)
	r.Put("/ads/{id}/hold", adController.EditHold)
	r.Delete("/ads/{id}/hold", adController.ReleaseHold)
	r.Post("/ads/{id}/renew", adController.Renew)

	// Dashboards and reads
	r.Get("/dashboard", adController.Dashboard)
	r.Get("/history", adController.EnquiryHistory)
	r.Get("/report", adController.StatusReport)

	// Follow-ups
	r.Get("/followups", followUpController.ListDue)
	r.Post("/followups/{id}/contact", followUpController.RecordContact)

	// Long polling
	r.Get("/poll", pollController.PollUser)
	r.Get("/admin/poll", pollController.PollAdmin)

	// Admin user removal keeps record history, owner reference is nulled
	r.Delete("/admin/users/{id}/ads", adController.DetachOwner)

	// Manual sweep trigger
	r.Post("/sweep", adController.RunSweep)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	log.Println("🚀 Server running on", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

// cmd/sweeper/main.go
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/adsofthq/adtrack-backend/internal/db"
	"github.com/adsofthq/adtrack-backend/internal/events"
	"github.com/adsofthq/adtrack-backend/internal/repository"
	"github.com/adsofthq/adtrack-backend/internal/service"
)

// One-shot daily sweep: marks expired actives completed, releases expired
// holds back to enquiry, and fills in missing day-1/day-2 follow-ups.
// Meant for external schedulers and manual catch-up runs.
func main() {
	asOfFlag := flag.String("as-of", "", "sweep date (YYYY-MM-DD), defaults to today")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	asOf := time.Now()
	if *asOfFlag != "" {
		parsed, err := time.Parse("2006-01-02", *asOfFlag)
		if err != nil {
			log.Fatalf("invalid -as-of date %q: %v", *asOfFlag, err)
		}
		asOf = parsed
	}

	db.Init()

	adRepo := &repository.AdRecordRepository{DB: db.DB}
	followUpRepo := &repository.FollowUpRepository{DB: db.DB}

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

	adService := &service.AdService{
		AdRecordRepo: adRepo,
		Scheduler: &service.FollowUpScheduler{
			FollowUpRepo: followUpRepo,
			AdRecordRepo: adRepo,
		},
		Events: publisher,
	}

	res, err := adService.RunDailySweep(asOf)
	if err != nil {
		log.Fatal("sweep failed:", err)
	}

	log.Printf("✅ Sweep for %s: %d ads completed, %d holds released, %d follow-ups created",
		asOf.Format("2006-01-02"), res.Completed, res.HoldsReleased, res.FollowUpsCreated)
}

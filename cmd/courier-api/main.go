// README: Entry point; loads config, wires providers and services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courier/internal/config"
	"courier/internal/geocode"
	httptransport "courier/internal/http"
	"courier/internal/infra"
	"courier/internal/modules/delivery"
	"courier/internal/modules/pricing"
	"courier/internal/routing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		log.Fatal(err)
	}
	defer redisClient.Close()

	primary := geocode.NewNominatimProvider(cfg.Geocode.NominatimURL, cfg.Geocode.CountryCodes, cfg.Geocode.ResultLimit)

	var secondary geocode.Provider
	if cfg.Geocode.GoogleKey != "" {
		google, err := geocode.NewGoogleProvider(cfg.Geocode.GoogleKey, cfg.Geocode.Region, cfg.Geocode.ResultLimit)
		if err != nil {
			log.Fatalf("google geocoder init: %v", err)
		}
		secondary = google
	} else {
		log.Print("COURIER_GOOGLE_MAPS_KEY not set; running without the secondary geocoder")
	}

	cache := geocode.NewCache(cfg.Geocode.CacheSize, cfg.Geocode.CacheTTL)
	orchestrator := geocode.NewOrchestrator(primary, secondary, cache)
	suggester := geocode.NewSuggester(orchestrator)

	estimator := routing.NewOSRMEstimator(cfg.Routing.OSRMURL)

	pricingStore := pricing.NewStore(dbPool)
	pricingSvc := pricing.NewService(pricingStore,
		pricing.SurchargeTable{
			pricing.TierPriority:  cfg.Pricing.Priority.Surcharge,
			pricing.TierRegular:   cfg.Pricing.Regular.Surcharge,
			pricing.TierScheduled: cfg.Pricing.Scheduled.Surcharge,
		},
		pricing.TierProfileTable{
			pricing.TierPriority:  {SpeedKmh: cfg.Pricing.Priority.SpeedKmh, OverheadMin: cfg.Pricing.Priority.OverheadMin},
			pricing.TierRegular:   {SpeedKmh: cfg.Pricing.Regular.SpeedKmh, OverheadMin: cfg.Pricing.Regular.OverheadMin},
			pricing.TierScheduled: {SpeedKmh: cfg.Pricing.Scheduled.SpeedKmh, OverheadMin: cfg.Pricing.Scheduled.OverheadMin},
		},
	)

	deliveryStore := delivery.NewStore(dbPool)
	sessionStore := delivery.NewSessionStore(redisClient, cfg.Session.TTL)
	deliverySvc := delivery.NewService(deliveryStore, sessionStore, estimator, pricingSvc)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Geocode:  orchestrator,
		Suggest:  suggester,
		Pricing:  pricingSvc,
		Delivery: deliverySvc,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("courier-api listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

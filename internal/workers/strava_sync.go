package workers

import (
	"context"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"seventyFiveAPI/services"
)

var (
	activitiesSynced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fitness_activities_synced_total",
		Help: "Total fitness activities pulled from providers",
	})
	syncFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fitness_sync_failures_total",
		Help: "Total per-user provider sync failures",
	})
)

// StravaSyncWorker periodically pulls new activities for every connected
// account so the check-in auto-fill has fresh data without a manual sync.
type StravaSyncWorker struct {
	fitness  *services.FitnessService
	interval time.Duration
	stopChan chan struct{}
}

func NewStravaSyncWorker(fitness *services.FitnessService, interval time.Duration) *StravaSyncWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &StravaSyncWorker{
		fitness:  fitness,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (w *StravaSyncWorker) Start() {
	go w.loop()
	log.Println("StravaSyncWorker: started")
}

func (w *StravaSyncWorker) Stop() {
	close(w.stopChan)
}

func (w *StravaSyncWorker) loop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runOnce(context.Background())
		case <-w.stopChan:
			return
		}
	}
}

// runOnce syncs each active connection independently. One user's expired or
// revoked tokens must not stall everyone else.
func (w *StravaSyncWorker) runOnce(ctx context.Context) {
	providers, err := w.fitness.ListActiveProviders(ctx)
	if err != nil {
		log.Printf("StravaSyncWorker: failed to list providers: %v", err)
		return
	}
	if len(providers) == 0 {
		return
	}

	total := 0
	failed := 0
	for _, p := range providers {
		count, err := w.fitness.SyncProvider(ctx, p)
		if err != nil {
			log.Printf("StravaSyncWorker: sync failed for user %s: %v", p.UserID, err)
			syncFailures.Inc()
			failed++
			continue
		}
		activitiesSynced.Add(float64(count))
		total += count
	}

	log.Printf("StravaSyncWorker: synced %d activities across %d users (%d failed)", total, len(providers), failed)
}

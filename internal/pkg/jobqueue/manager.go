package jobqueue

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/regware/paysync/app/repository"
	"github.com/regware/paysync/internal/pkg/env"
)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue       *Queue
	events      repository.WebhookEventRepository
	maxRetries  int
	retryTicker *time.Ticker
	stopCh      chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
	running     bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// InitManager creates the global job queue manager (singleton). The worker
// count and retry bound come from the environment.
func InitManager(dispatcher WebhookDispatcher, events repository.WebhookEventRepository) *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			queue:      NewQueue(envInt("WEBHOOK_WORKER_COUNT", 3), dispatcher),
			events:     events,
			maxRetries: envInt("WEBHOOK_MAX_RETRIES", DefaultMaxRetries),
			stopCh:     make(chan struct{}),
		}
	})
	return globalManager
}

// GetManager returns the global job queue manager, or nil before InitManager.
func GetManager() *Manager {
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	// Start the job queue
	m.queue.Start()

	// Re-dispatch failed webhook events that still have retry budget
	retryInterval := time.Duration(envInt("WEBHOOK_RETRY_INTERVAL", 2)) * time.Minute
	m.retryTicker = time.NewTicker(retryInterval)
	m.wg.Add(1)
	go m.retryWorker(retryInterval)

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.retryTicker != nil {
		m.retryTicker.Stop()
	}

	// Signal workers to stop
	close(m.stopCh)
	m.stopCh = nil
	m.running = false

	// Wait for background workers to finish
	m.wg.Wait()

	// Stop the job queue
	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// retryWorker runs periodically and re-enqueues failed webhook events that
// have not exhausted their retry budget.
func (m *Manager) retryWorker(interval time.Duration) {
	defer m.wg.Done()
	log.Infof("[JobQueue Manager] Started retry worker (interval: %s)", interval)

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Retry worker stopping")
			return
		case <-m.retryTicker.C:
			log.Debug("[JobQueue Manager] Running retry check for failed webhook events")
			if err := m.retryFailedEvents(); err != nil {
				log.Errorf("[JobQueue Manager] Error retrying failed webhook events: %v", err)
			}
		}
	}
}

func (m *Manager) retryFailedEvents() error {
	events, err := m.events.ListRetryable(m.maxRetries, 50)
	if err != nil {
		return err
	}
	for _, event := range events {
		log.Infof("[JobQueue Manager] Re-enqueueing failed event %s (retry %d/%d)",
			event.ProviderEventID, event.RetryCount, m.maxRetries)
		if err := m.queue.EnqueueWebhookEvent(event.ID, event.ProviderEventID); err != nil {
			log.Errorf("[JobQueue Manager] Re-enqueue of event %s failed: %v", event.ProviderEventID, err)
		}
	}
	return nil
}

func envInt(key string, def int) int {
	raw := env.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/doulando/ventre/internal/pkg/env"
)

const (
	defaultWorkerCount  = 5
	periodicTaskTimeout = 5 * time.Minute
)

// PeriodicFunc is a background task run on a fixed interval.
type PeriodicFunc func(ctx context.Context) error

type periodicTask struct {
	name     string
	interval time.Duration
	run      PeriodicFunc
}

// Manager manages the global job queue and background tasks
type Manager struct {
	queue   *Queue
	tasks   []periodicTask
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		workerCount := env.GetInt("JOBQUEUE_WORKERS", defaultWorkerCount)
		globalManager = newManager(NewQueue(workerCount))
	})
	return globalManager
}

func newManager(q *Queue) *Manager {
	return &Manager{
		queue:  q,
		stopCh: make(chan struct{}),
	}
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// RegisterPeriodic adds a ticker-driven task. Tasks registered while the
// manager is running take effect on the next Start.
func (m *Manager) RegisterPeriodic(name string, interval time.Duration, fn PeriodicFunc) {
	if interval <= 0 || fn == nil {
		log.Warnf("[JobQueue Manager] Ignoring periodic task %q (interval=%s)", name, interval)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, periodicTask{name: name, interval: interval, run: fn})
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

	m.queue.Start()

	for _, task := range m.tasks {
		m.wg.Add(1)
		go m.periodicWorker(task, m.stopCh)
	}

	log.Infof("[JobQueue Manager] Started successfully (%d periodic tasks)", len(m.tasks))
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

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

// periodicWorker runs one task on its ticker until stopCh closes. Overlapping
// runs are impossible because the ticker drops ticks while the task is busy.
func (m *Manager) periodicWorker(task periodicTask, stopCh <-chan struct{}) {
	defer m.wg.Done()
	log.Infof("[JobQueue Manager] Started %s worker (interval: %s)", task.name, task.interval)

	ticker := time.NewTicker(task.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			log.Infof("[JobQueue Manager] %s worker stopping", task.name)
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), periodicTaskTimeout)
			if err := task.run(ctx); err != nil {
				log.Errorf("[JobQueue Manager] %s error: %v", task.name, err)
			}
			cancel()
		}
	}
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

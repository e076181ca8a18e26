package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/vrlink/extension/internal/logging"
)

// Status is a point-in-time view of the runtime written to the status file.
type Status struct {
	Time          time.Time `json:"time"`
	Uptime        string    `json:"uptime"`
	State         string    `json:"state"`
	Enabled       bool      `json:"enabled"`
	Frame         uint64    `json:"frame"`
	LastFrameMs   float64   `json:"lastFrameMs"`
	ActiveScene   string    `json:"activeScene"`
	QueuedTimings int       `json:"queuedTimings"`
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	LogManager    *logging.SlogManager
	State         func() string
	Enabled       func() bool
	Frame         func() uint64
	LastFrame     func() time.Duration
	ActiveScene   func() string
	QueuedTimings func() int
	StatusDir     string
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	startedAt time.Time
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus returns the current runtime status
func (s *Service) GetStatus() Status {
	status := Status{
		Time:   time.Now(),
		Uptime: time.Since(s.startedAt).Round(time.Second).String(),
	}
	if s.deps.State != nil {
		status.State = s.deps.State()
	}
	if s.deps.Enabled != nil {
		status.Enabled = s.deps.Enabled()
	}
	if s.deps.Frame != nil {
		status.Frame = s.deps.Frame()
	}
	if s.deps.LastFrame != nil {
		status.LastFrameMs = float64(s.deps.LastFrame().Microseconds()) / 1000.0
	}
	if s.deps.ActiveScene != nil {
		status.ActiveScene = s.deps.ActiveScene()
	}
	if s.deps.QueuedTimings != nil {
		status.QueuedTimings = s.deps.QueuedTimings()
	}
	return status
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.startedAt = time.Now()
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting status monitor goroutine", "function", "startStatusMonitor")

		statusFile, err := os.Create(s.deps.StatusDir + "/status.txt")
		if err != nil {
			logger.Error("Error creating status file", "error", err)
		}
		defer statusFile.Close()

		for {
			select {
			case <-s.stopChan:
				return
			default:
				time.Sleep(1000 * time.Millisecond)

				status := s.GetStatus()
				statusStr, err := json.MarshalIndent(status, "", "  ")
				if err != nil {
					statusStr = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
				}

				if statusFile != nil {
					statusFile.Truncate(0)
					statusFile.Seek(0, 0)
					statusFile.Write(statusStr)
					statusFile.WriteString("\n")
				}

				logger.Debug("Runtime status",
					"state", status.State,
					"enabled", status.Enabled,
					"frame", status.Frame,
					"lastFrameMs", status.LastFrameMs,
					"scene", status.ActiveScene,
				)
			}
		}
	}()

	return nil
}

// Stop stops the status monitor
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}

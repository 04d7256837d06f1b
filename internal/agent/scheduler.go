package agent

import (
	"context"
	"errors"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"octofit.app/tracker/pkg/logger"
)

var ErrAgentNotFound = errors.New("agent not found")

// Scheduler owns the cron runner and the registry of agents.
type Scheduler struct {
	mu     sync.RWMutex
	cron   *cron.Cron
	agents []Agent
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		agents: make([]Agent, 0),
	}
}

// RegisterAgent adds agent to the registry and schedules it when it has a cron spec.
func (s *Scheduler) RegisterAgent(agent Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := agent.GetName()
	schedule := agent.GetSchedule()
	if schedule != "" {
		_, err := s.cron.AddFunc(schedule, func() {
			logger.L().Info("agent run started", zap.String("agent", name))
			if err := agent.Execute(context.Background()); err != nil {
				logger.L().Error("agent run failed", zap.String("agent", name), zap.Error(err))
				return
			}
			logger.L().Info("agent run finished", zap.String("agent", name))
		})
		if err != nil {
			return err
		}
		logger.L().Info("agent scheduled", zap.String("agent", name), zap.String("schedule", schedule))
	} else {
		logger.L().Info("agent registered for on-demand runs", zap.String("agent", name))
	}

	s.agents = append(s.agents, agent)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.L().Info("agent scheduler started", zap.Int("agents", len(s.GetRegisteredAgents())))
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.L().Info("agent scheduler stopped")
}

// RunAgentByName runs the named agent immediately.
func (s *Scheduler) RunAgentByName(ctx context.Context, name string) error {
	s.mu.RLock()
	var target Agent
	for _, a := range s.agents {
		if a.GetName() == name {
			target = a
			break
		}
	}
	s.mu.RUnlock()

	if target == nil {
		return ErrAgentNotFound
	}
	logger.L().Info("agent on-demand run", zap.String("agent", name))
	return target.Execute(ctx)
}

func (s *Scheduler) GetRegisteredAgents() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.agents))
	for i, a := range s.agents {
		names[i] = a.GetName()
	}
	return names
}

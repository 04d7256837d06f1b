package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingAgent struct {
	name     string
	schedule string
	runs     int
}

func (a *countingAgent) GetName() string     { return a.name }
func (a *countingAgent) GetSchedule() string { return a.schedule }
func (a *countingAgent) Execute(context.Context) error {
	a.runs++
	return nil
}

func TestSchedulerRegistry(t *testing.T) {
	s := NewScheduler()
	nightly := &countingAgent{name: "nightly", schedule: "0 18 * * *"}
	manual := &countingAgent{name: "manual"}

	require.NoError(t, s.RegisterAgent(nightly))
	require.NoError(t, s.RegisterAgent(manual))
	assert.Equal(t, []string{"nightly", "manual"}, s.GetRegisteredAgents())

	require.NoError(t, s.RunAgentByName(context.Background(), "manual"))
	assert.Equal(t, 1, manual.runs)
	assert.ErrorIs(t, s.RunAgentByName(context.Background(), "ghost"), ErrAgentNotFound)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler()
	assert.Error(t, s.RegisterAgent(&countingAgent{name: "broken", schedule: "every tuesday"}))
	assert.Empty(t, s.GetRegisteredAgents())
}

package runtime

import (
	"context"
	"market-node/domain"
	"market-node/infrastructure/transport"
	"market-node/mocks"
	"market-node/runtime/workers"
	"market-node/services"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestOrchestrator_Sent_Action_Comes_Back_As_Processed_Echo(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	n := newNode(t, nil)
	loopback := transport.NewLoopback(feePerKBDay)
	config := OrchestratorConfig{
		PollInterval:  10 * time.Millisecond,
		BatchSize:     10,
		Retry:         DefaultRetryPolicy(),
		DaysRetention: transport.DefaultDaysRetention,
	}
	orchestrator, err := NewOrchestrator(config, n.log, workers.NewSupervisor(n.log, 10*time.Millisecond),
		loopback, n.messages, mocks.NewMockNotificationSink(ctrl), nil, services.Registrations(n.deps)...)
	req.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		orchestrator.Start(ctx)
		close(done)
	}()

	// When the node adds a market
	result, err := orchestrator.Send(ctx, marketRequest())
	req.NoError(err)
	req.Equal(domain.SendStatusSent, result.Status)

	// Then the echo is received and processed by the running pipeline
	req.Eventually(func() bool {
		echo, err := n.messages.Get(result.MsgID, domain.Incoming)
		return err == nil && echo.Status == domain.StatusProcessed
	}, 2*time.Second, 10*time.Millisecond)

	// And stopping the orchestrator stops the workers
	orchestrator.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.Fail("orchestrator did not stop")
	}
}

func TestOrchestrator_Rejects_Duplicate_Registrations(t *testing.T) {
	req := require.New(t)
	n := newNode(t, nil)
	registrations := services.Registrations(n.deps)

	_, err := NewOrchestrator(OrchestratorConfig{}, n.log, workers.NewSupervisor(n.log, 0),
		transport.NewLoopback(0), n.messages, nil, nil, append(registrations, registrations[0])...)

	req.Error(err)
}

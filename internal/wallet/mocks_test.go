package wallet

import (
	"context"
	"sync"
	"testing"

	"github.com/gabapcia/zkwallet/internal/onboarding"
	"github.com/gabapcia/zkwallet/internal/walletevents"

	"github.com/stretchr/testify/mock"
)

type OnboardingMock struct {
	mock.Mock
}

func NewOnboardingMock(t *testing.T) *OnboardingMock {
	m := &OnboardingMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *OnboardingMock) Connect(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *OnboardingMock) ReconnectOrSelect(ctx context.Context, firstSelect bool) (onboarding.Status, error) {
	args := m.Called(ctx, firstSelect)
	return args.Get(0).(onboarding.Status), args.Error(1)
}

func (m *OnboardingMock) Reset(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// eventSource is a minimal walletevents.Source.
type eventSource struct {
	mu       sync.Mutex
	handlers map[walletevents.Name][]walletevents.Handler
}

func newEventSource() *eventSource {
	return &eventSource{handlers: make(map[walletevents.Name][]walletevents.Handler)}
}

func (s *eventSource) On(name walletevents.Name, handler walletevents.Handler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers[name] = append(s.handlers[name], handler)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.handlers[name] = nil
	}
}

func (s *eventSource) emit(ctx context.Context, event walletevents.Event) {
	s.mu.Lock()
	handlers := append([]walletevents.Handler{}, s.handlers[event.Name]...)
	s.mu.Unlock()

	for _, h := range handlers {
		h(ctx, event)
	}
}

func (s *eventSource) subscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.handlers[walletevents.Disconnect]) > 0
}

type notifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *notifier) Notify(_ context.Context, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.messages = append(n.messages, msg)
}

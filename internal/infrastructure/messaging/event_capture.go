package messaging

import "sync"

// EventCapture is an in-memory EventPublisher used by integration tests to
// assert on what the executor's caller published, without a live broker.
type EventCapture struct {
	transferCompleted     []TransferCompletedEvent
	transferRejected      []TransferRejectedEvent
	transferFailed        []TransferFailedEvent
	accountStatusChanged  []AccountStatusChangedEvent
	mu                    sync.RWMutex
}

// NewEventCapture creates a new event capture publisher.
func NewEventCapture() *EventCapture {
	return &EventCapture{}
}

func (e *EventCapture) PublishTransferCompleted(event TransferCompletedEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transferCompleted = append(e.transferCompleted, event)
	return nil
}

func (e *EventCapture) PublishTransferRejected(event TransferRejectedEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transferRejected = append(e.transferRejected, event)
	return nil
}

func (e *EventCapture) PublishTransferFailed(event TransferFailedEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transferFailed = append(e.transferFailed, event)
	return nil
}

func (e *EventCapture) PublishAccountStatusChanged(event AccountStatusChangedEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.accountStatusChanged = append(e.accountStatusChanged, event)
	return nil
}

func (e *EventCapture) Close() error    { return nil }
func (e *EventCapture) IsHealthy() bool { return true }

func (e *EventCapture) GetTransferCompletedEvents() []TransferCompletedEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	events := make([]TransferCompletedEvent, len(e.transferCompleted))
	copy(events, e.transferCompleted)
	return events
}

func (e *EventCapture) GetTransferRejectedEvents() []TransferRejectedEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	events := make([]TransferRejectedEvent, len(e.transferRejected))
	copy(events, e.transferRejected)
	return events
}

func (e *EventCapture) GetTransferFailedEvents() []TransferFailedEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	events := make([]TransferFailedEvent, len(e.transferFailed))
	copy(events, e.transferFailed)
	return events
}

func (e *EventCapture) GetAccountStatusChangedEvents() []AccountStatusChangedEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	events := make([]AccountStatusChangedEvent, len(e.accountStatusChanged))
	copy(events, e.accountStatusChanged)
	return events
}

// Reset clears all captured events (useful between tests).
func (e *EventCapture) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transferCompleted = nil
	e.transferRejected = nil
	e.transferFailed = nil
	e.accountStatusChanged = nil
}

// GetEventCount returns the total number of events captured.
func (e *EventCapture) GetEventCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.transferCompleted) + len(e.transferRejected) +
		len(e.transferFailed) + len(e.accountStatusChanged)
}

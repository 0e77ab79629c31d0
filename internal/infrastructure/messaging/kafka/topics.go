package kafka

// Topic names for transfer lifecycle events.
const (
	TopicTransferCompleted      = "ledger.transfers.completed"
	TopicTransferRejected       = "ledger.transfers.rejected"
	TopicTransferFailed         = "ledger.transfers.failed"
	TopicAccountStatusChanged   = "ledger.accounts.status-changed"
)

// GetAllTopics returns the list of all topics this service publishes to.
func GetAllTopics() []string {
	return []string{
		TopicTransferCompleted,
		TopicTransferRejected,
		TopicTransferFailed,
		TopicAccountStatusChanged,
	}
}

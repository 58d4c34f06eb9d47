package mqtt

// Publisher pushes ranking results to the depot broker so downstream
// depot systems and signage can consume them.
type Publisher interface {
	// PublishPlan publishes the serialized plan for the given service
	// date and returns the message identifier assigned to it.
	PublishPlan(date string, payload []byte) (string, error)
}

package normalize

const (
	ErrMsgCycleDetected = "Cycle detected in loaded association graph."
)

package models

// ScanPhase enumerates the lifecycle of a scan request.
type ScanPhase string

const (
	ScanIdle      ScanPhase = "idle"
	ScanInFlight  ScanPhase = "in_flight"
	ScanSucceeded ScanPhase = "succeeded"
	ScanFailed    ScanPhase = "failed"
)

// RequestState is the observable state of the scan orchestrator. Output and
// Pass are meaningful only when Phase is ScanSucceeded; Message only when
// Phase is ScanFailed. Token identifies the submit that produced the state,
// so observers can ignore transitions from requests they did not start.
type RequestState struct {
	Phase   ScanPhase `json:"phase"`
	Token   uint64    `json:"token"`
	Output  string    `json:"output,omitempty"`
	Pass    bool      `json:"pass,omitempty"`
	Message string    `json:"message,omitempty"`
}

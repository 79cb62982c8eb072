package adcp

// SignalDeployment describes one deployment target a signal is
// available in.
type SignalDeployment struct {
	Platform string `json:"platform"`
	Status   string `json:"status"`
}

// SignalPricing describes how a signal is priced.
type SignalPricing struct {
	Model string  `json:"model"`
	Rate  float64 `json:"rate,omitempty"`
}

// Signal is one entry returned by get_signals.
type Signal struct {
	SignalAgentSegmentID string             `json:"signal_agent_segment_id"`
	Name                 string             `json:"name"`
	Description          string             `json:"description,omitempty"`
	SignalType           string             `json:"signal_type"`
	DataProvider         string             `json:"data_provider"`
	CoveragePercentage   float64            `json:"coverage_percentage"`
	Deployments          []SignalDeployment `json:"deployments"`
	Pricing              SignalPricing      `json:"pricing"`
}

// GetSignalsRequest is the request body of get_signals.
type GetSignalsRequest struct {
	SignalSpec string         `json:"signal_spec"`
	DeliverTo  map[string]any `json:"deliver_to"`
	Filters    map[string]any `json:"filters,omitempty"`
	MaxResults int            `json:"max_results,omitempty"`
}

// GetSignalsResponse is the wire response of get_signals.
type GetSignalsResponse struct {
	Signals []Signal `json:"signals"`
	Errors  Errors   `json:"errors,omitempty"`
}

func (r GetSignalsResponse) ToWire() map[string]any {
	out := map[string]any{"signals": r.Signals}
	if len(r.Errors) > 0 {
		out["errors"] = r.Errors
	}
	return out
}

// ActivationDetails describes the result of activating a signal.
type ActivationDetails struct {
	Status       string `json:"status"`
	ActivatedAt  string `json:"activated_at,omitempty"`
	PlatformRefs map[string]string `json:"platform_refs,omitempty"`
}

// ActivateSignalResponse is the wire response of activate_signal.
type ActivateSignalResponse struct {
	SignalID          string            `json:"signal_id"`
	ActivationDetails ActivationDetails `json:"activation_details"`
	Errors            Errors            `json:"errors,omitempty"`
}

func (r ActivateSignalResponse) ToWire() map[string]any {
	out := map[string]any{
		"signal_id":          r.SignalID,
		"activation_details": r.ActivationDetails,
	}
	if len(r.Errors) > 0 {
		out["errors"] = r.Errors
	}
	return out
}

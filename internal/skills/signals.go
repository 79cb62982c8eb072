package skills

import (
	"context"

	"github.com/kagent-dev/adcp-sales-agent/internal/adcp"
)

// GetSignals discovers audience/contextual signals matching the
// buyer's spec through the tenant's SignalsProvider.
func (r *Registry) GetSignals(ctx context.Context, req adcp.GetSignalsRequest, _ *adcp.ToolContext) (adcp.GetSignalsResponse, error) {
	signals, err := r.Signals.Discover(ctx, req.SignalSpec, req.DeliverTo, req.Filters, req.MaxResults)
	if err != nil {
		return adcp.GetSignalsResponse{Errors: adcp.Errors{{
			Code: adcp.CodeAdapterError, Message: err.Error(), Severity: adcp.SeverityError,
		}}}, nil
	}
	return adcp.GetSignalsResponse{Signals: signals}, nil
}

// ActivateSignal activates a previously discovered signal for
// deployment against the tenant's ad server.
func (r *Registry) ActivateSignal(ctx context.Context, signalID string, deliverTo map[string]any, _ *adcp.ToolContext) (adcp.ActivateSignalResponse, error) {
	details, err := r.Signals.Activate(ctx, signalID, deliverTo)
	if err != nil {
		return adcp.ActivateSignalResponse{
			SignalID: signalID,
			Errors:   adcp.Errors{{Code: adcp.CodeAdapterError, Message: err.Error(), Severity: adcp.SeverityError}},
		}, nil
	}
	return adcp.ActivateSignalResponse{SignalID: signalID, ActivationDetails: *details}, nil
}

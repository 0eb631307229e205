package policies

import domainpricing "staybook/internal/domain/pricing"

// Telemetry receives business observations from handlers.
type Telemetry interface {
	ObserveQuote(b domainpricing.Breakdown)
	ObserveSubmission(mode, result string)
}

type NopTelemetry struct{}

func (NopTelemetry) ObserveQuote(domainpricing.Breakdown) {}
func (NopTelemetry) ObserveSubmission(string, string)     {}

package prompush

import (
	"log"

	"i18nsync/internal/metrics"
)

// Install selects the metrics backend by name ("pushgateway", "none" or
// empty) and returns a flush func to defer. Setup problems are logged and
// leave the no-op backend in place; metrics never fail a run.
func Install(backendName, job, gatewayURL string) (flush func()) {
	noop := func() {}
	switch backendName {
	case "pushgateway":
		b, err := NewBackend(job, gatewayURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return noop
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", gatewayURL, backendName, job)
		metrics.SetBackend(b)
		return func() {
			if err := metrics.Flush(); err != nil {
				log.Printf("metrics: flush error: %v", err)
			}
		}
	case "", "none":
		return noop
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
		return noop
	}
}

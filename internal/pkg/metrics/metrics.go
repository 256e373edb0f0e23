// Package metrics holds the Prometheus counters recorded by the auth core.
// Metrics are registered with the default registry on package
// initialisation and exposed at GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every CargoLive metric.
const Namespace = "cargolive"

// RegistrationsTotal counts registration attempts that reached the store.
// Label:
//   - result: "created" or "conflict"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "auth_registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "unknown_email" or "bad_password"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// GuardRejectionsTotal counts requests rejected by the route guard.
// Label:
//   - reason: "missing_header", "malformed_header", "expired", "invalid" or "unknown_user"
var GuardRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "auth_guard_rejections_total",
		Help:      "Total number of requests rejected by the authentication guard.",
	},
	[]string{"reason"},
)

// BootstrapRunsTotal counts demo bootstrap outcomes.
// Label:
//   - outcome: "created", "repaired", "noop", "skipped" or "failed"
var BootstrapRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "demo_bootstrap_runs_total",
		Help:      "Total number of demo account bootstrap runs, by outcome.",
	},
	[]string{"outcome"},
)

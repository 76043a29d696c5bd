// Package metrics defines all custom Prometheus metrics for the
// authentication service. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// RegistrationsTotal counts registration attempts by outcome.
// Label:
//   - result: "created", "conflict" or "invalid"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts stage-1 password checks by outcome. Unknown email and
// wrong password stay distinct here even though clients see one message.
// Label:
//   - result: "success", "unknown_user" or "bad_password"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of stage-1 login attempts, by result.",
	},
	[]string{"result"},
)

// SecondFactorTotal counts stage-2 TOTP verifications by outcome.
// Label:
//   - result: "success", "invalid_code" or "unknown_user"
var SecondFactorTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "second_factor_total",
		Help:      "Total number of second-factor verification attempts, by result.",
	},
	[]string{"result"},
)

// SessionsEstablishedTotal counts sessions that completed both stages.
var SessionsEstablishedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_established_total",
		Help:      "Total number of fully authenticated sessions established.",
	},
)

// StageDuration measures how long each authentication stage takes end to
// end, bcrypt pool queue time included.
// Label:
//   - stage: "register", "login" or "verify"
var StageDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of authentication stage processing, by stage.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"stage"},
)

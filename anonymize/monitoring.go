// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package anonymize

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	playersAnonymized = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aoerectools_players_anonymized",
		Help: "Count of player lobby records rewritten.",
	})

	chatRewritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aoerectools_chat_records_rewritten",
		Help: "Count of chat records retained with a rewritten name.",
	})

	chatDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aoerectools_chat_records_dropped",
		Help: "Count of chat records removed by policy.",
	})

	chatSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aoerectools_chat_records_skipped",
		Help: "Count of chat records left unedited due to per-record errors.",
	})

	ratingsPatched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aoerectools_ratings_patched",
		Help: "Count of leaderboard rating fields overwritten.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		playersAnonymized,
		chatRewritten,
		chatDropped,
		chatSkipped,
		ratingsPatched,
	)
}

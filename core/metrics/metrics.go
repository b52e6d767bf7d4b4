// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package metrics exposes the provider engine's prometheus counters and
// gauges: the JSON-RPC surface this core backs doesn't expose metrics
// itself, but the engine process is still observable like any other
// long-running service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	BlocksMined          prometheus.Counter
	TransactionsAccepted prometheus.Counter
	TransactionsRejected prometheus.Counter
	LiveSnapshots        prometheus.Gauge
	MempoolPending       prometheus.Gauge
	MempoolFuture        prometheus.Gauge
}

func New(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		BlocksMined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "devnet", Subsystem: "miner", Name: "blocks_mined_total",
			Help: "Number of blocks produced by the block producer.",
		}),
		TransactionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "devnet", Subsystem: "txpool", Name: "transactions_accepted_total",
			Help: "Number of transactions accepted into the mempool.",
		}),
		TransactionsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "devnet", Subsystem: "txpool", Name: "transactions_rejected_total",
			Help: "Number of transactions rejected by mempool validation.",
		}),
		LiveSnapshots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "devnet", Subsystem: "snapshot", Name: "live_snapshots",
			Help: "Number of snapshots currently held by the snapshot registry.",
		}),
		MempoolPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "devnet", Subsystem: "txpool", Name: "pending_transactions",
			Help: "1 if the pending partition holds at least one transaction, else 0 (not a count).",
		}),
		MempoolFuture: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "devnet", Subsystem: "txpool", Name: "future_transactions",
			Help: "1 if the future partition holds at least one transaction, else 0 (not a count).",
		}),
	}
	if registerer != nil {
		registerer.MustRegister(m.BlocksMined, m.TransactionsAccepted, m.TransactionsRejected, m.LiveSnapshots, m.MempoolPending, m.MempoolFuture)
	}
	return m
}

package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var BillsFinalized = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "billdesk",
	Subsystem: "billing",
	Name:      "bills_finalized_total",
	Help:      "Total bills numbered and archived.",
})

var BillAmount = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "billdesk",
	Subsystem: "billing",
	Name:      "bill_total_amount",
	Help:      "Grand total of finalized bills.",
	Buckets:   []float64{100, 250, 500, 1000, 2500, 5000, 10000, 25000, 50000},
})

var DispatchOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "billdesk",
	Subsystem: "dispatch",
	Name:      "outcomes_total",
	Help:      "Documents dispatched by the tier that finally took them.",
}, []string{"tier"})

var DispatchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "billdesk",
	Subsystem: "dispatch",
	Name:      "attempt_failures_total",
	Help:      "Failed dispatch attempts by tier.",
}, []string{"tier"})

var CatalogImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "billdesk",
	Subsystem: "catalog",
	Name:      "import_rows_total",
	Help:      "Imported product rows by result (ok, failed).",
}, []string{"result"})

var CatalogSize = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "billdesk",
	Subsystem: "catalog",
	Name:      "products",
	Help:      "Products in the lookup cache after the last rebuild.",
})

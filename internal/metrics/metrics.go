package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "medstore"

// Backup kind labels used for kinds outside Auto, Manual and Scheduled.
const (
	OtherBackupKind   = "other"
	InvalidBackupKind = "invalid"
)

var (
	CatalogMedicines = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_medicines",
		Help:      "Number of medicines in the catalog.",
	})
	LowStockMedicines = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "low_stock_medicines",
		Help:      "Number of medicines below the low stock threshold.",
	})
	CartLines = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cart_lines",
		Help:      "Number of lines in the active cart.",
	})
	Checkouts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_total",
		Help:      "Completed checkouts.",
	})
	UnitsSold = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "units_sold_total",
		Help:      "Units sold through checkout.",
	})
	Revenue = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "revenue_total",
		Help:      "Sum of receipt grand totals.",
	})
	Backups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backups_total",
		Help:      "Backup attempts by kind and result.",
	}, []string{"kind", "result"})
	PersistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persistence_failures_total",
		Help:      "Catalog file load and save failures.",
	}, []string{"operation"})
)

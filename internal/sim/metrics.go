package sim

import (
	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - Prometheus-метрики цикла симуляции.
//
// * arrowsim_tick_duration_seconds - histogram
// * arrowsim_projectiles_active - gauge
// * arrowsim_hits_total{kind} - counter
// * arrowsim_damage_total - counter
// * arrowsim_geometry_errors_total - counter
// * arrowsim_projectiles_despawned_total{reason} - counter
type Metrics struct {
	tickDuration   prometheus.Histogram
	active         prometheus.Gauge
	hits           *prometheus.CounterVec
	damage         prometheus.Counter
	geometryErrors prometheus.Counter
	despawned      *prometheus.CounterVec
}

// NewMetrics создаёт метрики и регистрирует их в reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "arrowsim",
			Name:      "tick_duration_seconds",
			Help:      "Длительность обработки одного тика.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arrowsim",
			Name:      "projectiles_active",
			Help:      "Количество снарядов в мире.",
		}),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arrowsim",
			Name:      "hits_total",
			Help:      "Разрешённые попадания по типу цели.",
		}, []string{"kind"}),
		damage: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arrowsim",
			Name:      "damage_total",
			Help:      "Суммарный урон, принятый целями.",
		}),
		geometryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arrowsim",
			Name:      "geometry_errors_total",
			Help:      "Тики снарядов, пропущенные из-за некорректной геометрии.",
		}),
		despawned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arrowsim",
			Name:      "projectiles_despawned_total",
			Help:      "Удалённые снаряды по причине.",
		}, []string{"reason"}),
	}

	for _, c := range []prometheus.Collector{m.tickDuration, m.active, m.hits, m.damage, m.geometryErrors, m.despawned} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeOutcome(o projectile.Outcome) {
	if m == nil {
		return
	}
	m.hits.WithLabelValues(o.Kind.String()).Inc()
	if o.Accepted {
		m.damage.Add(o.Damage)
	}
}

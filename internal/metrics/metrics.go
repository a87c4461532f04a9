// Package metrics содержит счётчики Prometheus для команд, ставок и переводов.
// Отдаются по /metrics через httpapi.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry: собственный реестр бота (без глобального DefaultRegisterer).
	Registry = prometheus.NewRegistry()

	commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dabs_bot",
			Name:      "commands_total",
			Help:      "Обработанные команды по результату.",
		},
		[]string{"command", "outcome"},
	)

	bets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dabs_bot",
			Name:      "bets_total",
			Help:      "Ставки по игре и исходу.",
		},
		[]string{"game", "outcome"},
	)

	dabsMoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dabs_bot",
			Name:      "dabs_moved_total",
			Help:      "Сумма дабов (по модулю), прошедших через операции.",
		},
		[]string{"kind"},
	)

	updatesInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dabs_bot",
			Name:      "updates_inflight",
			Help:      "Апдейты Telegram в обработке.",
		},
	)

	dictionaryLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dabs_bot",
			Name:      "dictionary_lookups_total",
			Help:      "Запросы к словарю по результату.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		commands,
		bets,
		dabsMoved,
		updatesInflight,
		dictionaryLookups,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler отдаёт метрики в формате Prometheus.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Исходы команд.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// ObserveCommand учитывает одну команду.
func ObserveCommand(command, outcome string) {
	commands.WithLabelValues(command, outcome).Inc()
}

// ObserveBet учитывает ставку.
func ObserveBet(game string, won bool) {
	outcome := "lost"
	if won {
		outcome = "won"
	}
	bets.WithLabelValues(game, outcome).Inc()
}

// AddDabsMoved прибавляет |amount| к счётчику вида kind (roll, give, bet, level).
func AddDabsMoved(kind string, amount int64) {
	if amount < 0 {
		amount = -amount
	}
	dabsMoved.WithLabelValues(kind).Add(float64(amount))
}

// UpdateStarted / UpdateFinished: гейдж апдейтов в работе.
func UpdateStarted() { updatesInflight.Inc() }
func UpdateFinished() { updatesInflight.Dec() }

// ObserveLookup учитывает запрос к словарю.
func ObserveLookup(outcome string) {
	dictionaryLookups.WithLabelValues(outcome).Inc()
}

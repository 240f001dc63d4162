package ws

import "github.com/prometheus/client_golang/prometheus"

var (
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_commands_total",
			Help: "Client commands by kind and outcome",
		},
		[]string{"kind", "result"},
	)
	TurnsEnded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_turns_ended_total",
			Help: "Turns ended by reason",
		},
		[]string{"reason"},
	)
	MatchesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_matches_finished_total",
			Help: "Matches finished by reason",
		},
		[]string{"reason"},
	)
	ActiveRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "game_active_rooms",
			Help: "Rooms currently open",
		},
	)
)

func init() {
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(TurnsEnded)
	prometheus.MustRegister(MatchesFinished)
	prometheus.MustRegister(ActiveRooms)
}

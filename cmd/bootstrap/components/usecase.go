package components

import (
	"caresched/internal/domain/reservation"
	"caresched/internal/domain/schedule"
	"caresched/internal/domain/sla"
	"caresched/internal/pkg/clock"
	"caresched/internal/pkg/config"
	"caresched/internal/usecase/commands"
	"caresched/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		sla.NewEstimator,
		NewScheduleConfig,
		commands.NewReservationCommands,
		queries.NewReservationQueries,
	),
)

// NewScheduleConfig parses the configured workday window into the engine's
// structured schedule configuration.
func NewScheduleConfig(cfg config.Config) (schedule.Config, error) {
	start, err := reservation.ParseTimeOfDay(cfg.Engine.WorkdayStart)
	if err != nil {
		return schedule.Config{}, err
	}
	end, err := reservation.ParseTimeOfDay(cfg.Engine.WorkdayEnd)
	if err != nil {
		return schedule.Config{}, err
	}
	return schedule.NewConfig(start, end, cfg.Engine.SlotDuration)
}

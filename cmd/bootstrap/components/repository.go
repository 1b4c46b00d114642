package components

import (
	"caresched/internal/infra/repository"
	"caresched/internal/usecase/shared"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repository.NewReservationStore,
			fx.As(new(shared.ReservationStore)),
		),
	),
)

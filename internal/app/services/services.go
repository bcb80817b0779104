package services

import (
	"github.com/oguzk/acadcore/internal/app/repositories"
	"github.com/oguzk/acadcore/internal/pkg/auth"
)

// Services is the service container handed to controllers
type Services struct {
	Auth      AuthService
	Ledger    LedgerService
	Reconcile ReconcileService
	Repair    RepairService
}

// NewServices wires all services over the repository container
func NewServices(repos *repositories.Repositories, jwtService *auth.JWTService, notifier Notifier) *Services {
	if notifier == nil {
		notifier = NewLogNotifier()
	}

	return &Services{
		Auth:      NewAuthService(repos.Identity, jwtService),
		Ledger:    NewLedgerService(repos.Assignment, repos.Faculty, notifier),
		Reconcile: NewReconcileService(repos.Identity, repos.Faculty, repos.Student),
		Repair:    NewRepairService(repos.Assignment, repos.Faculty),
	}
}

package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/xavierca1/proposal-control/internal/entity"
)

// App é o controlador de topo: dono do estado de sessão e da coleção de
// propostas, repassado por referência aos consumidores de leitura.
type App struct {
	Gate   *SessionGate
	Sync   *RecordSynchronizer
	logger *slog.Logger
}

func NewApp(gate *SessionGate, sync *RecordSynchronizer, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Gate: gate, Sync: sync, logger: logger}
	gate.Subscribe(app.onSessionChange)
	return app
}

func (a *App) Start(ctx context.Context) error {
	return a.Gate.Start(ctx)
}

func (a *App) Stop() {
	a.Gate.Stop()
}

// onSessionChange carrega os dados ao entrar e limpa tudo ao sair. Ao entrar
// a coleção é limpa antes, para que registros de outro usuário não sobrevivam.
func (a *App) onSessionChange(ctx context.Context, state AuthState, _ *entity.Session) {
	switch state {
	case AuthAuthenticated:
		a.Sync.Clear()
		if _, err := a.Sync.LoadAll(ctx); err != nil && !errors.Is(err, ErrNoSession) {
			a.logger.Warn("carga inicial falhou", "error", err)
		}
	case AuthUnauthenticated:
		a.Sync.Clear()
	}
}

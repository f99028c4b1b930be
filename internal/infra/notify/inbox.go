package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/xavierca1/proposal-control/internal/entity"
)

const DefaultCapacity = 50

// Inbox guarda as notificações até a interface buscá-las. Quando cheia,
// descarta as mais antigas. Nada é persistido.
type Inbox struct {
	mu       sync.Mutex
	items    []entity.Notification
	capacity int
	logger   *slog.Logger
}

func NewInbox(capacity int, logger *slog.Logger) *Inbox {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Inbox{capacity: capacity, logger: logger}
}

func (i *Inbox) Notify(_ context.Context, n entity.Notification) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.items) == i.capacity {
		i.items = i.items[1:]
	}
	i.items = append(i.items, n)
	i.logger.Debug("notificação", "level", n.Level, "message", n.Message)
}

// Drain devolve as notificações pendentes em ordem de chegada e esvazia a caixa.
func (i *Inbox) Drain() []entity.Notification {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := i.items
	i.items = nil
	if out == nil {
		out = []entity.Notification{}
	}
	return out
}

func (i *Inbox) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.items)
}

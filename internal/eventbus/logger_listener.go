package eventbus

import (
	"context"

	"github.com/annel0/arrow-physics/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог.
// Функция неблокирующая.
func StartLoggingListener(ctx context.Context, bus EventBus) (Subscription, error) {
	sub, err := bus.Subscribe(ctx, Filter{}, func(ctx context.Context, ev *Envelope) {
		out, err := DecodeOutcome(ev)
		if err != nil {
			logging.Debug("[EventBus] %s %s src=%s prio=%d size=%dB", ev.ID, ev.EventType, ev.Source, ev.Priority, len(ev.Payload))
			return
		}
		logging.Debug("[EventBus] %s %s tick=%d projectile=%d target=%d damage=%.2f",
			ev.ID, ev.EventType, out.Tick, out.ProjectileID, out.TargetID, out.Damage)
	})
	if err != nil {
		return nil, err
	}
	logging.Info("LoggingListener: подписка на все события активирована")
	return sub, nil
}

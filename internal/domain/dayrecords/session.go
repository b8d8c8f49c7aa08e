package dayrecords

import (
	"context"
	"sync"
)

// State del sincronizador para la fecha activa.
type State int

const (
	// StateLoading: se entra en cada cambio de fecha, hasta el primer
	// snapshot de la nueva suscripción.
	StateLoading State = iota
	// StateReady: ya llegó el snapshot inicial (o el default vacío).
	StateReady
)

// Snapshot es una entrega del stream, etiquetada con la fecha de la
// suscripción que la produjo. La etiqueta es la guarda contra el hazard
// principal: un callback tardío de la fecha anterior pisando el estado
// recién cargado de la nueva.
type Snapshot struct {
	Date   string
	Record Record
}

// Session es el sincronizador de registro diario: una fecha activa por
// vez. Switch desarma la suscripción anterior antes de (o junto con)
// abrir la nueva, y las entregas cuya etiqueta ya no coincide con la
// fecha activa se descartan sin aplicar.
type Session struct {
	repo Repository

	mu     sync.Mutex
	active string
	state  State
	sub    Subscription
	// stale se cierra cuando la suscripción vigente deja de serlo (por
	// el próximo Switch o por Close). Cada suscripción recibe el suyo:
	// una entrega bloqueada en el envío aborta apenas se cierra, en vez
	// de colarse en el próximo receive del consumidor.
	stale  chan struct{}
	closed bool

	out  chan Snapshot
	once sync.Once
}

func NewSession(repo Repository) *Session {
	return &Session{
		repo: repo,
		out:  make(chan Snapshot),
	}
}

// Updates entrega los snapshots aplicables (solo de la fecha activa).
func (s *Session) Updates() <-chan Snapshot {
	return s.out
}

// State reporta Loading/Ready para la fecha activa.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Switch cambia la fecha activa. Cancela la suscripción previa (exactamente
// una vez) y abre una nueva etiquetada con la fecha pedida. Si Watch falla,
// la sesión queda sin suscripción y el caller decide degradar a Empty.
func (s *Session) Switch(ctx context.Context, date string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return context.Canceled
	}

	// Desarmar lo anterior antes de armar lo nuevo: cancelar la
	// suscripción y marcar vieja su época, liberando cualquier envío
	// en vuelo.
	s.retireLocked()
	s.active = date
	s.state = StateLoading
	s.mu.Unlock()

	sub, err := s.repo.Watch(ctx, date)
	if err != nil {
		return err
	}

	s.mu.Lock()
	// Pudo haber otro Switch (o Close) mientras abríamos: esta suscripción
	// ya nació vieja, se descarta entera.
	if s.closed || s.active != date {
		s.mu.Unlock()
		sub.Cancel()
		return nil
	}
	s.sub = sub
	stale := make(chan struct{})
	s.stale = stale
	s.mu.Unlock()

	go s.pump(date, sub, stale)
	return nil
}

// retireLocked cancela la suscripción vigente y cierra su canal de
// época. Llamar con s.mu tomado.
func (s *Session) retireLocked() {
	if s.sub != nil {
		s.sub.Cancel()
		s.sub = nil
	}
	if s.stale != nil {
		close(s.stale)
		s.stale = nil
	}
}

// pump reenvía snapshots de una suscripción mientras su época siga
// vigente. El select del envío también mira stale: un Switch que llega
// con el envío ya bloqueado lo aborta, no queda snapshot viejo esperando
// al próximo receive.
func (s *Session) pump(date string, sub Subscription, stale <-chan struct{}) {
	for rec := range sub.Updates() {
		s.mu.Lock()
		old := s.closed || s.active != date
		if !old {
			s.state = StateReady
		}
		s.mu.Unlock()

		if old {
			// Entrega tardía de una fecha ya abandonada: no se aplica.
			return
		}

		select {
		case s.out <- Snapshot{Date: date, Record: rec.Normalize(date)}:
		case <-stale:
			return
		}
	}
}

// Close cancela la suscripción vigente y termina la sesión. Idempotente.
func (s *Session) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.retireLocked()
		s.mu.Unlock()
	})
}

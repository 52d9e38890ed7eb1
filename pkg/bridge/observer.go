package bridge

// Observer receives progress of a handshake.
// Calls happen on the goroutine running the handshake and should return quickly.
type Observer interface {
	PhaseChanged(Phase)
	RoundCompleted(round int, matched bool)
	HandshakeDone(Result)
}

// NopObserver ignores everything.
type NopObserver struct{}

// PhaseChanged implements Observer.
func (NopObserver) PhaseChanged(Phase) {}

// RoundCompleted implements Observer.
func (NopObserver) RoundCompleted(int, bool) {}

// HandshakeDone implements Observer.
func (NopObserver) HandshakeDone(Result) {}

// Observers fans out to multiple observers.
type Observers []Observer

// PhaseChanged implements Observer.
func (o Observers) PhaseChanged(phase Phase) {
	for _, obs := range o {
		obs.PhaseChanged(phase)
	}
}

// RoundCompleted implements Observer.
func (o Observers) RoundCompleted(round int, matched bool) {
	for _, obs := range o {
		obs.RoundCompleted(round, matched)
	}
}

// HandshakeDone implements Observer.
func (o Observers) HandshakeDone(res Result) {
	for _, obs := range o {
		obs.HandshakeDone(res)
	}
}

package audio

// SoundOn reports whether new sounds are allowed.
func (e *Engine) SoundOn() bool { return e.soundOn.Load() }

// ToggleSound flips the mute gate and returns the new value. Sounds
// already scheduled keep playing.
func (e *Engine) ToggleSound() bool {
	for {
		old := e.soundOn.Load()
		if e.soundOn.CompareAndSwap(old, !old) {
			e.notify(!old)
			return !old
		}
	}
}

// SetSoundOn sets the mute gate, notifying subscribers on change.
func (e *Engine) SetSoundOn(on bool) {
	if e.soundOn.Swap(on) != on {
		e.notify(on)
	}
}

// Subscribe calls fn with the new value after every change of the mute
// gate. The returned function removes the subscription.
func (e *Engine) Subscribe(fn func(on bool)) (cancel func()) {
	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.subMu.Unlock()
	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

func (e *Engine) notify(on bool) {
	e.subMu.Lock()
	fns := make([]func(bool), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()
	for _, fn := range fns {
		fn(on)
	}
}

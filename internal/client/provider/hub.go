package provider

import "sync"

type registration struct {
	id       ListenerID
	listener Listener
}

// Hub is a channel-keyed listener registry. It is safe for concurrent use
// and its zero value is ready to use.
type Hub struct {
	mu        sync.Mutex
	nextID    ListenerID
	listeners map[string][]registration
}

// Listen registers listener on channel.
func (h *Hub) Listen(channel string, listener Listener) ListenerID {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.listeners == nil {
		h.listeners = make(map[string][]registration)
	}
	h.nextID++
	h.listeners[channel] = append(h.listeners[channel], registration{id: h.nextID, listener: listener})
	return h.nextID
}

// Remove unregisters id from channel. Unknown ids are ignored.
func (h *Hub) Remove(channel string, id ListenerID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	regs := h.listeners[channel]
	for i, r := range regs {
		if r.id != id {
			continue
		}
		kept := make([]registration, 0, len(regs)-1)
		kept = append(kept, regs[:i]...)
		kept = append(kept, regs[i+1:]...)
		if len(kept) == 0 {
			delete(h.listeners, channel)
		} else {
			h.listeners[channel] = kept
		}
		return
	}
}

// Dispatch delivers ev to the listeners registered on ev.Channel at the time of
// the call, in registration order. Listeners run without the hub lock held, so
// they may call Listen or Remove.
func (h *Hub) Dispatch(ev Event) {
	h.mu.Lock()
	regs := h.listeners[ev.Channel]
	h.mu.Unlock()

	for _, r := range regs {
		r.listener(ev)
	}
}

// DispatchAuth is a shortcut for Dispatch on AuthChannel.
func (h *Hub) DispatchAuth(name, message string, data any) {
	h.Dispatch(Event{Channel: AuthChannel, Name: name, Message: message, Data: data})
}

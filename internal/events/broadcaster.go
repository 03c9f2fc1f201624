package events

// Subscriber represents a channel that receives events.
type Subscriber chan Event

// Subscribe adds a new subscriber and returns its channel.
// The channel has a buffer so a slow reader does not block Emit.
func (e *Emitter) Subscribe() Subscriber {
	ch := make(Subscriber, 64)
	e.mu.Lock()
	e.subscribers[ch] = struct{}{}
	e.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (e *Emitter) Unsubscribe(sub Subscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.subscribers[sub]; !ok {
		return
	}
	delete(e.subscribers, sub)
	close(sub)
}

// CloseAllSubscribers closes every subscriber channel.
func (e *Emitter) CloseAllSubscribers() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for sub := range e.subscribers {
		close(sub)
	}
	e.subscribers = make(map[Subscriber]struct{})
}

// broadcast sends an event to all subscribers.
// Non-blocking: if a subscriber's buffer is full, the event is dropped for that subscriber.
func (e *Emitter) broadcast(evt Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for sub := range e.subscribers {
		select {
		case sub <- evt:
		default:
		}
	}
}

// SubscriberCount returns the current number of subscribers.
func (e *Emitter) SubscriberCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subscribers)
}

// RecentEvents returns the last n events from the ring buffer.
// If n is greater than available events, returns all available.
func (e *Emitter) RecentEvents(n int) []Event {
	all := e.buffer.Snapshot()
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// Package bus provides the synchronous topic bus the composer and the
// surrounding widget talk through.
package bus

import (
	"sync"

	"github.com/debemdeboas/archive-comments/internal/model"
)

type Topic string

const (
	// Consumed by the composer.
	EditorOpen        Topic = "editor-open"
	EditorClose       Topic = "editor-close"
	EditorReply       Topic = "editor-reply"
	EditorShowLoading Topic = "editor-show-loading"
	EditorHideLoading Topic = "editor-hide-loading"
	EditorNotify      Topic = "editor-notify"

	// Published by the composer.
	ListInsert      Topic = "list-insert"
	EditorSubmit    Topic = "editor-submit"
	EditorSubmitted Topic = "editor-submitted"
	UnreadUpdate    Topic = "unread-update"
	UserChanged     Topic = "user-changed"
	CheckerAdmin    Topic = "checker-admin"
)

// Notify is the payload of EditorNotify.
type Notify struct {
	Msg  string
	Type model.NotifyType
}

// UnreadPayload is the payload of UnreadUpdate.
type UnreadPayload struct {
	Notifies []model.Notify
}

// AdminCheck is the payload of CheckerAdmin. OnSuccess receives the session
// token obtained by the login challenge.
type AdminCheck struct {
	Nick      string
	Email     string
	OnSuccess func(token string)
}

type Handler func(payload any)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus delivers each publication to the topic's handlers in subscription
// order, on the publisher's goroutine.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Topic][]subscription
}

func New() *Bus {
	return &Bus{
		subs: make(map[Topic][]subscription),
	}
}

// Subscribe registers h for topic and returns its disposer. Calling the
// disposer more than once is a no-op.
func (b *Bus) Subscribe(topic Topic, h Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(topic, id) })
	}
}

func (b *Bus) unsubscribe(topic Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			next := make([]subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.subs, topic)
			} else {
				b.subs[topic] = next
			}
			return
		}
	}
}

// Publish calls every handler of topic. Handlers run without the bus lock
// held, so they may subscribe, dispose or publish.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.RLock()
	subs := b.subs[topic]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(payload)
	}
}

// Count returns the number of live subscriptions on topic.
func (b *Bus) Count(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Package events рассылает уведомления об изменениях ленты.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	EntryCreated Type = "entry.created"
	EntryUpdated Type = "entry.updated"
	EntryDeleted Type = "entry.deleted"
	EntryReacted Type = "entry.reacted"
	CommentAdded Type = "comment.added"
	CommentLiked Type = "comment.liked"
)

// Event - уведомление об успешной мутации.
type Event struct {
	Type      Type      `json:"type"`
	EntryID   string    `json:"entryId"`
	CommentID string    `json:"commentId,omitempty"`
	ActorID   string    `json:"actorId"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// AllEntries - подписка на события всех записей.
const AllEntries = ""

// Hub хранит каналы подписчиков.
type Hub struct {
	mu sync.RWMutex
	//   map[entryID] map[subscriberID] channel
	subs   map[string]map[string]chan Event
	buffer int
}

// NewHub создает хаб. buffer - размер очереди каждого подписчика.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[string]map[string]chan Event),
		buffer: buffer,
	}
}

// Subscribe подписывает на события записи entryID (AllEntries - на все).
// Канал закрывается и подписка снимается, когда ctx завершается.
func (h *Hub) Subscribe(ctx context.Context, entryID string) <-chan Event {
	ch := make(chan Event, h.buffer)
	subID := uuid.NewString()

	h.mu.Lock()
	if h.subs[entryID] == nil {
		h.subs[entryID] = make(map[string]chan Event)
	}
	h.subs[entryID][subID] = ch
	h.mu.Unlock()

	// Горутина для очистки при отключении клиента
	go func() {
		<-ctx.Done()
		h.mu.Lock()
		if entrySubs, ok := h.subs[entryID]; ok {
			delete(entrySubs, subID)
			if len(entrySubs) == 0 {
				delete(h.subs, entryID)
			}
		}
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

// Publish не блокируется: если подписчик не успевает читать, событие для
// него пропускается.
func (h *Hub) Publish(_ context.Context, e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	send := func(subs map[string]chan Event) {
		for _, ch := range subs {
			select {
			case ch <- e:
			default:
			}
		}
	}
	send(h.subs[AllEntries])
	if e.EntryID != AllEntries {
		send(h.subs[e.EntryID])
	}
}

// Subscribers возвращает число активных подписок.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, subs := range h.subs {
		n += len(subs)
	}
	return n
}

// Multi рассылает событие нескольким получателям по очереди.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(ctx, e)
		}
	}
}

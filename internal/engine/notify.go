package engine

import (
	"sync"
	"time"
)

type EventKind string

const (
	EventTaskCreated         EventKind = "task.created"
	EventTaskUpdated         EventKind = "task.updated"
	EventTaskCompleted       EventKind = "task.completed"
	EventTaskDeleted         EventKind = "task.deleted"
	EventTaskFailed          EventKind = "task.failed"
	EventProfileUpdated      EventKind = "profile.updated"
	EventAchievementUnlocked EventKind = "achievement.unlocked"
)

// Event is published after a mutation has been committed.
type Event struct {
	// ID ties events to the history record written by the same lifecycle event.
	// Empty for plain CRUD changes.
	ID     string
	Kind   EventKind
	TaskID int64
	// Code is the achievement code for EventAchievementUnlocked.
	Code string
	At   time.Time
}

// Notifier fans committed changes out to subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the event and is expected to re-read
// state on the next one it receives.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func NewNotifier() *Notifier {
	return &Notifier{subs: map[int]chan Event{}}
}

// Subscribe registers a listener. The returned cancel func closes the channel.
func (n *Notifier) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = ch
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (n *Notifier) Publish(events ...Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ev := range events {
		for _, ch := range n.subs {
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

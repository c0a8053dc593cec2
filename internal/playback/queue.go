package playback

import (
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/samber/lo/mutable"
)

// EmptyQueueText is what List renders for an empty or missing queue.
const EmptyQueueText = "no queue"

// Queues keeps one FIFO of tracks per guild. A guild's queue is created lazily
// and is never removed, only emptied.
type Queues struct {
	mu     sync.Mutex
	queues map[string][]Track
}

func NewQueues() *Queues {
	return &Queues{queues: make(map[string][]Track)}
}

// EnsureQueue creates an empty queue for the guild if it has none and reports
// whether it did.
func (q *Queues) EnsureQueue(guildID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.queues[guildID]; ok {
		return false
	}
	q.queues[guildID] = []Track{}
	return true
}

// Enqueue appends t to the guild's queue, creating the queue if needed.
func (q *Queues) Enqueue(guildID string, t Track) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queues[guildID] = append(q.queues[guildID], t)
}

// DequeueNext removes and returns the first track. ok is false when the queue
// is empty or missing, in which case nothing changes.
func (q *Queues) DequeueNext(guildID string) (t Track, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.queues[guildID]
	if len(items) == 0 {
		return Track{}, false
	}

	t = items[0]
	items[0] = Track{}
	q.queues[guildID] = items[1:]
	return t, true
}

// Shuffle randomizes the order of the guild's queue in place and reports
// whether there was anything to shuffle.
func (q *Queues) Shuffle(guildID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.queues[guildID]
	if len(items) == 0 {
		return false
	}
	mutable.Shuffle(items)
	return true
}

// Tracks returns a copy of the guild's queue.
func (q *Queues) Tracks(guildID string) []Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Track(nil), q.queues[guildID]...)
}

func (q *Queues) Len(guildID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queues[guildID])
}

// List renders the guild's queue for display, one 1-indexed URL per line.
func (q *Queues) List(guildID string) string {
	return RenderList(q.Tracks(guildID))
}

// RenderList renders tracks as "1. url\n2. url". An empty list renders as
// EmptyQueueText.
func RenderList(tracks []Track) string {
	if len(tracks) == 0 {
		return EmptyQueueText
	}
	lines := lo.Map(tracks, func(t Track, i int) string {
		return fmt.Sprintf("%d. %s", i+1, t.URL)
	})
	return strings.Join(lines, "\n")
}

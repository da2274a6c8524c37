package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const previewPath = "/dev/mail/"

// StoredMessage is a message captured by the sandbox.
type StoredMessage struct {
	ID        string
	Message   Message
	CreatedAt time.Time
}

// SandboxTransport captures messages in memory instead of delivering them and
// hands back a preview URL, unless baseURL is empty. It keeps the newest
// capacity messages.
type SandboxTransport struct {
	mu       sync.RWMutex
	baseURL  string
	capacity int
	order    []string
	messages map[string]StoredMessage
}

func NewSandboxTransport(baseURL string, capacity int) *SandboxTransport {
	if capacity <= 0 {
		capacity = 50
	}
	return &SandboxTransport{
		baseURL:  strings.TrimRight(baseURL, "/"),
		capacity: capacity,
		messages: make(map[string]StoredMessage, capacity),
	}
}

func (t *SandboxTransport) Send(ctx context.Context, msg *Message) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	id := uuid.NewString()

	t.mu.Lock()
	t.messages[id] = StoredMessage{ID: id, Message: *msg, CreatedAt: time.Now()}
	t.order = append(t.order, id)
	for len(t.order) > t.capacity {
		delete(t.messages, t.order[0])
		t.order = t.order[1:]
	}
	t.mu.Unlock()

	if t.baseURL == "" {
		return Receipt{MessageID: id}, nil
	}
	return Receipt{MessageID: id, PreviewURL: t.baseURL + previewPath + id}, nil
}

// Get returns a captured message by id.
func (t *SandboxTransport) Get(id string) (StoredMessage, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.messages[id]
	return m, ok
}

// List returns the captured messages, newest first.
func (t *SandboxTransport) List() []StoredMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]StoredMessage, 0, len(t.order))
	for i := len(t.order) - 1; i >= 0; i-- {
		out = append(out, t.messages[t.order[i]])
	}
	return out
}

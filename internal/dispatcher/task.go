package dispatcher

import (
	"context"
	"sync"
	"time"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"
)

// taskRecord is the in-memory representation of one A2A task, scoped
// to the tenant/principal that created it so a lookup by id can never
// cross a tenant boundary.
type taskRecord struct {
	ID          string
	ContextID   string
	TenantID    string
	PrincipalID string
	Status      protocol.TaskStatus
	History     []protocol.Message
	Artifacts   []protocol.Artifact
	Metadata    map[string]any
	PushConfig  *inlinePushConfig
	CreatedAt   time.Time
	TerminalAt  time.Time
}

// inlinePushConfig is the per-task push-notification override supplied
// directly on message/send, taking precedence over any persisted
// config for the lifetime of this task only (§9 Open Question
// resolution).
type inlinePushConfig struct {
	URL            string
	AuthSchemes    []string
	AuthCredential string
}

func (t *taskRecord) isTerminal() bool {
	switch t.Status.State {
	case protocol.TaskStateCompleted, protocol.TaskStateFailed, protocol.TaskStateCanceled:
		return true
	default:
		return false
	}
}

// taskTable is the concurrent Task store: an in-memory map with
// age-based eviction of terminal tasks. The number of entries is not
// capped and non-terminal tasks are never evicted, matching the §9
// design note ("if the deployment requires durability, replace with a
// datastore behind the same interface").
type taskTable struct {
	mu        sync.Mutex
	tasks     map[string]*taskRecord
	retention time.Duration
}

func newTaskTable(retention time.Duration) *taskTable {
	return &taskTable{tasks: make(map[string]*taskRecord), retention: retention}
}

func taskKey(tenantID, taskID string) string { return tenantID + "/" + taskID }

func (t *taskTable) put(rec *taskRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tasks[taskKey(rec.TenantID, rec.ID)] = rec
}

func (t *taskTable) get(tenantID, taskID string) (*taskRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.tasks[taskKey(tenantID, taskID)]
	return rec, ok
}

// sweep drops terminal tasks older than retention. It is safe to call
// concurrently with put/get.
func (t *taskTable) sweep(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, rec := range t.tasks {
		if rec.isTerminal() && now.Sub(rec.TerminalAt) > t.retention {
			delete(t.tasks, k)
		}
	}
}

// runSweeper blocks until ctx is canceled, sweeping at the given
// interval. Callers run it in its own goroutine.
func (t *taskTable) runSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.sweep(now)
		}
	}
}

package dispatcher

import (
	"encoding/json"
	"net/http"
	"time"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"
)

// writeStream emits the message/stream SSE framing: one
// TaskStatusUpdateEvent per state transition and one
// TaskArtifactUpdateEvent per completed artifact, Final:true on the
// terminal event (§4.4, §9 Open Question resolution — no sub-skill
// interleaving).
func (d *Dispatcher) writeStream(w http.ResponseWriter, rec *taskRecord) {
	flusher, ok := w.(http.Flusher)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeEvent(w, protocol.StreamingMessageEvent{
		Result: &protocol.TaskStatusUpdateEvent{
			Kind:      "status-update",
			TaskID:    rec.ID,
			ContextID: rec.ContextID,
			Status:    protocol.TaskStatus{State: protocol.TaskStateWorking, Timestamp: rec.CreatedAt.UTC().Format(time.RFC3339)},
			Final:     false,
		},
	})
	if ok {
		flusher.Flush()
	}

	for i := range rec.Artifacts {
		lastChunk := true
		writeEvent(w, protocol.StreamingMessageEvent{
			Result: &protocol.TaskArtifactUpdateEvent{
				Kind:      "artifact-update",
				TaskID:    rec.ID,
				ContextID: rec.ContextID,
				LastChunk: &lastChunk,
				Artifact:  rec.Artifacts[i],
			},
		})
		if ok {
			flusher.Flush()
		}
	}

	writeEvent(w, protocol.StreamingMessageEvent{
		Result: &protocol.TaskStatusUpdateEvent{
			Kind:      "status-update",
			TaskID:    rec.ID,
			ContextID: rec.ContextID,
			Status:    rec.Status,
			Final:     true,
		},
	})
	if ok {
		flusher.Flush()
	}
}

func writeEvent(w http.ResponseWriter, ev protocol.StreamingMessageEvent) {
	body, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("data: "))
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n\n"))
}

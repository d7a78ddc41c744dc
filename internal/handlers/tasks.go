package handlers

import (
	"log"
	"net/http"

	"github.com/ilka-yus/task15/internal/auth"
	"github.com/ilka-yus/task15/internal/tasks"
)

// TriggerTaskHandler queues a mock notification email for the caller.
// Queueing trouble degrades the acknowledgement only; the request itself
// never fails because of it.
func TriggerTaskHandler(queue *tasks.Queue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFromContext(r.Context())

		task := tasks.Task{Name: tasks.TaskSendMockEmail, Payload: user.Username + "@gmail.com"}
		if err := queue.Enqueue(r.Context(), task); err != nil {
			log.Printf("enqueue task failed: %v", err)
			writeJSON(w, http.StatusAccepted, map[string]string{"message": "Task accepted, delivery not confirmed"})
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"message": "Task started"})
	}
}

package jobqueue

import (
	"testing"
	"time"

	"mqchat/internal/app/job"
)

func TestEnqueueDequeue_FIFO(t *testing.T) {
	q := New()
	q.Enqueue(job.Job{Text: "first"})
	q.Enqueue(job.Job{Text: "second"})

	j, ok := q.Dequeue()
	if !ok || j.Text != "first" {
		t.Fatalf("Dequeue = %+v, ok=%v, want first", j, ok)
	}

	j, ok = q.Dequeue()
	if !ok || j.Text != "second" {
		t.Fatalf("Dequeue = %+v, ok=%v, want second", j, ok)
	}
}

func TestDequeue_BlocksUntilEnqueue(t *testing.T) {
	q := New()

	result := make(chan job.Job, 1)
	go func() {
		j, _ := q.Dequeue()
		result <- j
	}()

	q.Enqueue(job.Job{Text: "late"})

	select {
	case j := <-result:
		if j.Text != "late" {
			t.Fatalf("Dequeue returned %+v, want Text=late", j)
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not unblock after Enqueue (possible deadlock)")
	}
}

func TestClose_DrainsThenReportsClosed(t *testing.T) {
	q := New()
	q.Enqueue(job.Job{Text: "buffered"})
	q.Close()

	j, ok := q.Dequeue()
	if !ok || j.Text != "buffered" {
		t.Fatalf("Dequeue after Close should drain buffered job first, got %+v, ok=%v", j, ok)
	}

	_, ok = q.Dequeue()
	if ok {
		t.Fatal("Dequeue on an empty closed queue should report ok=false")
	}
}

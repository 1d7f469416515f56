// Package alert holds the transient user notices raised by the pages.
package alert

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	Success Severity = "success"
	Info    Severity = "info"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// user facing texts
const (
	LoadFailedText    = "Erro ao carregar as provas, tente novamente em alguns segundos!"
	RequiredFieldText = "Todos os campos são obrigatórios!"
	CreatedText       = "Teste cadastrado com sucesso!"
	RetryText         = "Erro, tente novamente em alguns segundos!"
)

type Message struct {
	ID       string    `json:"id"`
	Severity Severity  `json:"severity"`
	Text     string    `json:"text"`
	Raised   time.Time `json:"raised"`
}

// Notifier receives the alerts of a page.
type Notifier interface {
	Notify(severity Severity, text string) Message
}

// Queue keeps raised messages until they auto-hide.
type Queue struct {
	autoHide time.Duration
	now      func() time.Time

	mu   sync.Mutex
	msgs []Message
}

// NewQueue returns a Queue whose messages hide after autoHide. A zero autoHide never hides.
func NewQueue(autoHide time.Duration) *Queue {
	return &Queue{autoHide: autoHide, now: time.Now}
}

// WithClock replaces the time source.
func (q *Queue) WithClock(now func() time.Time) *Queue {
	q.now = now
	return q
}

func (q *Queue) Notify(severity Severity, text string) Message {
	msg := Message{
		ID:       uuid.NewString(),
		Severity: severity,
		Text:     text,
		Raised:   q.now(),
	}
	q.mu.Lock()
	q.msgs = append(q.msgs, msg)
	q.mu.Unlock()
	return msg
}

// Active drops the hidden messages and returns the remaining ones, oldest first.
func (q *Queue) Active() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.prune()
	res := make([]Message, len(q.msgs))
	copy(res, q.msgs)
	return res
}

// Latest returns the newest visible message.
func (q *Queue) Latest() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.prune()
	if len(q.msgs) == 0 {
		return Message{}, false
	}
	return q.msgs[len(q.msgs)-1], true
}

// Dismiss hides the message with id.
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, m := range q.msgs {
		if m.ID == id {
			q.msgs = append(q.msgs[:i], q.msgs[i+1:]...)
			return
		}
	}
}

func (q *Queue) prune() {
	if q.autoHide <= 0 {
		return
	}
	now := q.now()
	kept := q.msgs[:0]
	for _, m := range q.msgs {
		if now.Sub(m.Raised) < q.autoHide {
			kept = append(kept, m)
		}
	}
	q.msgs = kept
}

// Clear hides every message.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.msgs = nil
	q.mu.Unlock()
}

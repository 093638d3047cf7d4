package core

import (
	"sync"
	"time"

	"github.com/Rorical/Ausmalbar/internal/models"
)

// PageState is what the core reports to the UI besides the page itself.
type PageState struct {
	mu        sync.RWMutex
	notices   []models.Message
	busy      bool
	lastError error
}

func NewPageState() *PageState {
	return &PageState{
		notices: make([]models.Message, 0),
	}
}

// AddNotice appends a line to the activity log.
func (ps *PageState) AddNotice(kind models.MessageType, content string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.notices = append(ps.notices, models.Message{
		Content: content,
		Type:    kind,
		At:      time.Now(),
	})
}

func (ps *PageState) AddProgramMessage(content string) {
	ps.AddNotice(models.Program, content)
}

// Notices returns a copy of the activity log.
func (ps *PageState) Notices() []models.Message {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	result := make([]models.Message, len(ps.notices))
	copy(result, ps.notices)
	return result
}

// NoticesSince returns the notices added after the first n.
func (ps *PageState) NoticesSince(n int) ([]models.Message, int) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	if n > len(ps.notices) {
		n = len(ps.notices)
	}
	result := make([]models.Message, len(ps.notices)-n)
	copy(result, ps.notices[n:])
	return result, len(ps.notices)
}

func (ps *PageState) SetBusy(busy bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.busy = busy
}

func (ps *PageState) IsBusy() bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.busy
}

// StartWork marks the state busy and clears the previous error.
func (ps *PageState) StartWork() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.busy = true
	ps.lastError = nil
}

// FinishWithError records err as the outcome of the last piece of work.
func (ps *PageState) FinishWithError(err error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.busy = false
	ps.lastError = err
}

func (ps *PageState) SetError(err error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.lastError = err
}

func (ps *PageState) GetLastError() error {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.lastError
}

func (ps *PageState) ClearError() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.lastError = nil
}

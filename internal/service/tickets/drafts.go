package tickets

import (
	"errors"
	"sync"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// DefaultOperator keys the draft of callers that do not identify themselves.
const DefaultOperator = "default"

// ErrSubmitInProgress is returned while the operator's draft is being written.
var ErrSubmitInProgress = errors.New("ticket submission already in progress")

// DraftStore keeps one in-progress ticket per operator.
// A draft that is being submitted is locked until EndSubmit.
type DraftStore struct {
	drafts     map[string]models.TicketDraft
	submitting map[string]bool
	mu         sync.RWMutex
}

// NewDraftStore creates an empty store.
func NewDraftStore() *DraftStore {
	return &DraftStore{
		drafts:     make(map[string]models.TicketDraft),
		submitting: make(map[string]bool),
	}
}

// Get returns a copy of the operator's draft and whether one exists.
func (ds *DraftStore) Get(operator string) (models.TicketDraft, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	draft, ok := ds.drafts[operatorKey(operator)]
	return draft.Clone(), ok
}

// Update applies fn to the operator's draft under the store lock. fn
// receives a copy; the store only keeps the result when fn returns nil.
func (ds *DraftStore) Update(operator string, fn func(*models.TicketDraft) error) (models.TicketDraft, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	key := operatorKey(operator)
	if ds.submitting[key] {
		return ds.drafts[key].Clone(), ErrSubmitInProgress
	}
	draft := ds.drafts[key].Clone()
	if err := fn(&draft); err != nil {
		return ds.drafts[key].Clone(), err
	}
	ds.drafts[key] = draft
	return draft.Clone(), nil
}

// BeginSubmit locks the operator's draft for submission and returns it.
// Only one submission per operator can be in flight.
func (ds *DraftStore) BeginSubmit(operator string) (models.TicketDraft, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	key := operatorKey(operator)
	if ds.submitting[key] {
		return ds.drafts[key].Clone(), ErrSubmitInProgress
	}
	ds.submitting[key] = true
	return ds.drafts[key].Clone(), nil
}

// EndSubmit applies fn, when set, to the locked draft and unlocks it.
func (ds *DraftStore) EndSubmit(operator string, fn func(*models.TicketDraft)) models.TicketDraft {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	key := operatorKey(operator)
	delete(ds.submitting, key)
	draft := ds.drafts[key].Clone()
	if fn != nil {
		fn(&draft)
		ds.drafts[key] = draft
	}
	return draft.Clone()
}

func operatorKey(operator string) string {
	if operator == "" {
		return DefaultOperator
	}
	return operator
}

package settlement

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crebit/ramp-service/internal/domain"
)

// OfframpTransaction is the chained payout stored inside a payin's entry.
type OfframpTransaction struct {
	ID        string                   `json:"id"`
	Status    domain.TransactionStatus `json:"status"`
	Amount    decimal.Decimal          `json:"amount"`
	Currency  string                   `json:"currency"`
	CreatedAt string                   `json:"created_at"`
}

// Entry accumulates the lifecycle of one payin and its chained payout. It is
// keyed by the payin transaction id and mutated in place on every related
// event; entries are never deleted and survive only for the process lifetime.
type Entry struct {
	PayinID          string              `json:"payin_id"`
	PayinCreated     bool                `json:"payin_created"`
	PayinProcessing  bool                `json:"payin_processing"`
	ProcessingAt     *time.Time          `json:"processing_at,omitempty"`
	PayinCompleted   bool                `json:"payin_completed"`
	PayinFailed      bool                `json:"payin_failed"`
	AmountLocal      decimal.Decimal     `json:"amount_local"`
	AmountUSDC       decimal.Decimal     `json:"amount_usdc"`
	WalletAddress    string              `json:"wallet_address,omitempty"`
	OfframpCreated   bool                `json:"offramp_created"`
	OfframpCompleted bool                `json:"offramp_completed"`
	OfframpFailed    bool                `json:"offramp_failed"`
	Offramp          *OfframpTransaction `json:"offramp_transaction,omitempty"`
	Transaction      json.RawMessage     `json:"transaction,omitempty"`
}

// Tracker is the in-memory correlation map between payin and chained payout
// lifecycles. All access goes through the mutex, so concurrent webhook
// deliveries touching the same payin are serialized. payoutIndex maps a
// payout id back to its payin id: later payout events carry only the
// payout's own id, and without the index there is no way back. State is
// lost on restart; payout events arriving after a restart cannot be
// correlated and are dropped by the caller.
type Tracker struct {
	mu          sync.Mutex
	entries     map[string]*Entry
	payoutIndex map[string]string
	processed   map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{
		entries:     make(map[string]*Entry),
		payoutIndex: make(map[string]string),
		processed:   make(map[string]struct{}),
	}
}

// MarkEventProcessed records the webhook event id and reports whether it had
// been seen before.
func (t *Tracker) MarkEventProcessed(eventID string) (duplicate bool) {
	if eventID == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.processed[eventID]; ok {
		return true
	}
	t.processed[eventID] = struct{}{}
	return false
}

// RecordCreated initializes the entry for a payin. An existing entry is
// overwritten wholesale: last write wins, no merge.
func (t *Tracker) RecordCreated(payinID string, raw json.RawMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[payinID] = &Entry{
		PayinID:      payinID,
		PayinCreated: true,
		Transaction:  raw,
	}
}

func (t *Tracker) RecordProcessing(payinID string, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.ensure(payinID)
	e.PayinProcessing = true
	e.ProcessingAt = &at
}

// RecordCompleted stores the final payin amounts (local currency and USDC)
// and the receiving wallet address.
func (t *Tracker) RecordCompleted(payinID string, amountLocal, amountUSDC decimal.Decimal, walletAddress string, raw json.RawMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.ensure(payinID)
	e.PayinCompleted = true
	e.AmountLocal = amountLocal
	e.AmountUSDC = amountUSDC
	e.WalletAddress = walletAddress
	if raw != nil {
		e.Transaction = raw
	}
}

// RecordFailed marks the terminal failed state, reachable from any point.
func (t *Tracker) RecordFailed(payinID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensure(payinID).PayinFailed = true
}

// AttachOfframp stores the chained payout under the payin's entry and
// indexes the payout id for reverse lookup. The index is updated in the
// same critical section as the entry, so a payout event can never observe
// the index without the entry.
func (t *Tracker) AttachOfframp(payinID string, off OfframpTransaction) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.ensure(payinID)
	e.OfframpCreated = true
	e.Offramp = &off
	t.payoutIndex[off.ID] = payinID
}

// MarkOfframpStatus resolves a payout event back to its payin entry and
// flips the completed/failed flags. It reports false when the payout id is
// unknown (for example after a restart wiped the tracker); the caller logs
// and drops such events, leaving all entries untouched.
func (t *Tracker) MarkOfframpStatus(payoutID string, status domain.TransactionStatus) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	payinID, ok := t.payoutIndex[payoutID]
	if !ok {
		return false
	}
	e, ok := t.entries[payinID]
	if !ok || e.Offramp == nil {
		return false
	}

	e.Offramp.Status = status
	switch status {
	case domain.TransactionStatusCompleted:
		e.OfframpCompleted = true
	case domain.TransactionStatusFailed:
		e.OfframpFailed = true
	}
	return true
}

// Snapshot returns a copy of the entry for a payin id, suitable for
// serving verbatim from the status endpoint.
func (t *Tracker) Snapshot(payinID string) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[payinID]
	if !ok {
		return Entry{}, false
	}

	out := *e
	if e.Offramp != nil {
		off := *e.Offramp
		out.Offramp = &off
	}
	if e.ProcessingAt != nil {
		at := *e.ProcessingAt
		out.ProcessingAt = &at
	}
	return out, true
}

// ensure returns the entry for a payin id, creating a bare one if absent.
// Callers must hold the mutex.
func (t *Tracker) ensure(payinID string) *Entry {
	e, ok := t.entries[payinID]
	if !ok {
		e = &Entry{PayinID: payinID}
		t.entries[payinID] = e
	}
	return e
}

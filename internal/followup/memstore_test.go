package followup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"SellerCare/internal/model"
)

// memStore 内存版仓储，同时实现 RecordStore / OrderStore / TemplateStore
type memStore struct {
	mu        sync.Mutex
	settings  map[string]*model.FollowUpSettings
	records   map[int64]*model.FollowUpRecord
	audits    []*model.FollowUpAudit
	templates map[string][]*model.MessageTemplate
	orders    map[string]*model.Order
	reviews   map[string]*model.BuyerReview
	flags     map[string]bool
	disputes  map[string]bool
	nextID    int64

	// failDue 注入 DueRecords 查询错误
	failDue bool
}

func newMemStore() *memStore {
	return &memStore{
		settings:  make(map[string]*model.FollowUpSettings),
		records:   make(map[int64]*model.FollowUpRecord),
		templates: make(map[string][]*model.MessageTemplate),
		orders:    make(map[string]*model.Order),
		reviews:   make(map[string]*model.BuyerReview),
		flags:     make(map[string]bool),
		disputes:  make(map[string]bool),
	}
}

func settingsKey(cookieID string, t model.ActionType) string {
	return cookieID + "|" + string(t)
}

func (m *memStore) putSettings(s *model.FollowUpSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[settingsKey(s.CookieID, s.ActionType)] = s
}

func (m *memStore) putOrder(o *model.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.OrderID] = o
}

func (m *memStore) putReview(r *model.BuyerReview) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews[r.OrderID] = r
}

func (m *memStore) putFlag(cookieID, buyerID string, kind model.BuyerFlagKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[cookieID+"|"+buyerID+"|"+string(kind)] = true
}

func (m *memStore) putDispute(orderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disputes[orderID] = true
}

func (m *memStore) putTemplate(cookieID string, t model.ActionType, contents ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := settingsKey(cookieID, t)
	for i, content := range contents {
		m.nextID++
		tpl := &model.MessageTemplate{Content: content, SortOrder: i}
		tpl.ID = m.nextID
		tpl.CookieID = cookieID
		tpl.ActionType = t
		m.templates[key] = append(m.templates[key], tpl)
	}
}

func (m *memStore) record(id int64) *model.FollowUpRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.records[id]
	if rec == nil {
		return nil
	}
	clone := *rec
	return &clone
}

func (m *memStore) recordByOrder(orderID string, t model.ActionType) *model.FollowUpRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.OrderID == orderID && rec.ActionType == t {
			clone := *rec
			return &clone
		}
	}
	return nil
}

// --- RecordStore ---

func (m *memStore) EnabledAccounts(ctx context.Context, actionType model.ActionType) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var accounts []string
	for _, s := range m.settings {
		if s.ActionType == actionType && s.Enabled {
			accounts = append(accounts, s.CookieID)
		}
	}
	return accounts, nil
}

func (m *memStore) Settings(ctx context.Context, cookieID string, actionType model.ActionType) (*model.FollowUpSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[settingsKey(cookieID, actionType)]
	if !ok {
		return nil, nil
	}
	clone := *s
	return &clone, nil
}

func (m *memStore) CreateRecord(ctx context.Context, rec *model.FollowUpRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.OrderID == rec.OrderID && existing.ActionType == rec.ActionType {
			return false, nil
		}
	}
	m.nextID++
	clone := *rec
	clone.ID = m.nextID
	m.records[clone.ID] = &clone
	rec.ID = clone.ID
	return true, nil
}

func (m *memStore) DueRecords(ctx context.Context, cookieID string, actionType model.ActionType, now time.Time) ([]*model.FollowUpRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDue {
		return nil, errors.New("due query failed")
	}
	var due []*model.FollowUpRecord
	for _, rec := range m.records {
		if rec.CookieID != cookieID || rec.ActionType != actionType {
			continue
		}
		if rec.Status != model.FollowUpStatusPending || rec.NextDueAt == nil || rec.NextDueAt.After(now) {
			continue
		}
		clone := *rec
		due = append(due, &clone)
	}
	for i := 0; i < len(due); i++ {
		for j := i + 1; j < len(due); j++ {
			if due[j].NextDueAt.Before(*due[i].NextDueAt) {
				due[i], due[j] = due[j], due[i]
			}
		}
	}
	return due, nil
}

func (m *memStore) UpdateRecord(ctx context.Context, recordID int64, status model.FollowUpStatus, attemptCount int, nextDueAt *time.Time, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[recordID]
	if !ok {
		return fmt.Errorf("record %d not found", recordID)
	}
	// 终态不可被覆盖
	if rec.Status.Terminal() {
		return nil
	}
	rec.Status = status
	rec.AttemptCount = attemptCount
	rec.NextDueAt = nextDueAt
	rec.Note = note
	return nil
}

func (m *memStore) CompleteForOrder(ctx context.Context, orderID string, types []model.ActionType, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.OrderID != orderID || rec.Status != model.FollowUpStatusPending {
			continue
		}
		for _, t := range types {
			if rec.ActionType == t {
				rec.Status = model.FollowUpStatusCompleted
				rec.Note = note
			}
		}
	}
	return nil
}

func (m *memStore) AppendAudit(ctx context.Context, audit *model.FollowUpAudit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *audit
	m.audits = append(m.audits, &clone)
	return nil
}

func (m *memStore) auditCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.audits)
}

func (m *memStore) lastAudit() *model.FollowUpAudit {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.audits) == 0 {
		return nil
	}
	return m.audits[len(m.audits)-1]
}

// --- OrderStore ---

func (m *memStore) Order(ctx context.Context, orderID string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, nil
	}
	clone := *o
	return &clone, nil
}

func (m *memStore) ShippedOrders(ctx context.Context, cookieID string) ([]*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Order
	for _, o := range m.orders {
		if o.CookieID == cookieID && o.Status == model.OrderStatusShipped {
			clone := *o
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memStore) IsBlacklisted(ctx context.Context, cookieID, buyerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags[cookieID+"|"+buyerID+"|"+string(model.BuyerFlagBlacklist)], nil
}

func (m *memStore) IsCompetitor(ctx context.Context, cookieID, buyerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags[cookieID+"|"+buyerID+"|"+string(model.BuyerFlagCompetitor)], nil
}

func (m *memStore) HasDispute(ctx context.Context, orderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disputes[orderID], nil
}

func (m *memStore) BuyerReview(ctx context.Context, orderID string) (*model.BuyerReview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[orderID]
	if !ok {
		return nil, nil
	}
	clone := *r
	return &clone, nil
}

// --- TemplateStore ---

func (m *memStore) Templates(ctx context.Context, cookieID string, actionType model.ActionType) ([]*model.MessageTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.templates[settingsKey(cookieID, actionType)], nil
}

package service_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	apperrors "github.com/Tasknova/What-app-Nandlal-sub001/internal/errors"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/model"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/provider"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/repository"
)

// In-memory fakes shared by the service tests. They mirror the SQL
// repositories' guarantees: counter arithmetic under a lock, CAS intake,
// transition-checked message updates.

type memCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[int64]*model.Campaign
	messages  *memMessageRepo
	nextID    int64
	stats     map[string]int
}

func newMemCampaignRepo(messages *memMessageRepo) *memCampaignRepo {
	return &memCampaignRepo{campaigns: map[int64]*model.Campaign{}, messages: messages}
}

func (r *memCampaignRepo) add(c model.Campaign) *model.Campaign {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == 0 {
		r.nextID++
		c.ID = r.nextID
	} else if c.ID > r.nextID {
		r.nextID = c.ID
	}
	r.campaigns[c.ID] = &c
	return &c
}

func (r *memCampaignRepo) Create(c *model.Campaign) error {
	stored := r.add(*c)
	c.ID = stored.ID
	return nil
}

func (r *memCampaignRepo) GetByID(id int64) (*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, apperrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (r *memCampaignRepo) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := []*model.Campaign{}
	for _, c := range r.campaigns {
		if status != "" && string(c.Status) != status {
			continue
		}
		cp := *c
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	total := len(all)
	if offset >= total {
		return []*model.Campaign{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *memCampaignRepo) ListDue(now time.Time) ([]*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	due := []*model.Campaign{}
	for _, c := range r.campaigns {
		if c.Status == model.CampaignStatusScheduled && c.ScheduledFor != nil && !c.ScheduledFor.After(now) {
			cp := *c
			due = append(due, &cp)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	return due, nil
}

func (r *memCampaignRepo) ListStuckSending(olderThan time.Time) ([]*model.Campaign, error) {
	return []*model.Campaign{}, nil
}

func (r *memCampaignRepo) MarkSending(id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok || c.Status != model.CampaignStatusScheduled {
		return false, nil
	}
	c.Status = model.CampaignStatusSending
	return true, nil
}

func (r *memCampaignRepo) Reschedule(id int64, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok || (c.Status != model.CampaignStatusDraft && c.Status != model.CampaignStatusScheduled) {
		return false, nil
	}
	c.Status = model.CampaignStatusScheduled
	c.ScheduledFor = &at
	return true, nil
}

func (r *memCampaignRepo) MarkFailed(id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok || c.Status != model.CampaignStatusSending {
		return false, nil
	}
	c.Status = model.CampaignStatusFailed
	return true, nil
}

// recount mirrors the SQL repository's message-row subselects.
func (r *memCampaignRepo) recount(c *model.Campaign) {
	if r.messages == nil {
		return
	}
	counts := map[model.MessageStatus]int{}
	for _, m := range r.messages.all() {
		if m.CampaignID != nil && *m.CampaignID == c.ID {
			counts[m.Status]++
		}
	}
	c.SentCount = counts[model.MessageStatusSent]
	c.DeliveredCount = counts[model.MessageStatusDelivered]
	c.FailedCount = counts[model.MessageStatusFailed]
}

func (r *memCampaignRepo) FinalizeDispatch(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok || c.Status != model.CampaignStatusSending {
		return nil
	}
	c.Status = model.CampaignStatusSent
	r.recount(c)
	return nil
}

func (r *memCampaignRepo) SyncCounters(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil
	}
	r.recount(c)
	return nil
}

func (r *memCampaignRepo) GetMessageStats(id int64) (map[string]int, error) {
	if r.stats != nil {
		return r.stats, nil
	}
	return map[string]int{}, nil
}

var _ repository.CampaignRepositoryInterface = (*memCampaignRepo)(nil)

type memMessageRepo struct {
	mu       sync.Mutex
	messages map[int64]*model.Message
	nextID   int64
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{messages: map[int64]*model.Message{}}
}

func (r *memMessageRepo) all() []*model.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Message{}
	for _, m := range r.messages {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memMessageRepo) Create(m *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	cp := *m
	r.messages[m.ID] = &cp
	return nil
}

func (r *memMessageRepo) GetByID(id int64) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *memMessageRepo) MarkSent(id int64, txnID, msgID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok || m.Status != model.MessageStatusPending {
		return nil
	}
	m.Status = model.MessageStatusSent
	m.ProviderTxnID = txnID
	m.ProviderMsgID = msgID
	m.SentAt = &at
	return nil
}

func (r *memMessageRepo) MarkFailed(id int64, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok || m.Status != model.MessageStatusPending {
		return nil
	}
	m.Status = model.MessageStatusFailed
	m.ErrorMessage = errorMessage
	return nil
}

func (r *memMessageRepo) FindByProviderRef(txnID, msgID, clientRef string) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *model.Message
	match := func(pred func(*model.Message) bool) *model.Message {
		var found *model.Message
		for _, m := range r.messages {
			if pred(m) && (found == nil || m.ID > found.ID) {
				found = m
			}
		}
		return found
	}
	if txnID != "" {
		best = match(func(m *model.Message) bool { return m.ProviderTxnID == txnID })
	}
	if best == nil && msgID != "" {
		best = match(func(m *model.Message) bool { return m.ProviderMsgID == msgID })
	}
	if best == nil && clientRef != "" {
		best = match(func(m *model.Message) bool { return m.ClientRef == clientRef })
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (r *memMessageRepo) FindLatestByPhone(phone string) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *model.Message
	for _, m := range r.messages {
		if m.Phone == phone && (best == nil || m.ID > best.ID) {
			best = m
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (r *memMessageRepo) ApplyStatus(id int64, to model.MessageStatus, errorMessage string) (model.MessageStatus, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return "", false, apperrors.NewMessageNotFound(id)
	}
	prev := m.Status
	if !prev.CanTransition(to) {
		return prev, false, nil
	}
	m.Status = to
	if errorMessage != "" {
		m.ErrorMessage = errorMessage
	}
	return prev, true, nil
}

var _ repository.MessageRepositoryInterface = (*memMessageRepo)(nil)

type memContactRepo struct {
	contacts []model.Contact
}

func (r *memContactRepo) GetByID(id int64) (*model.Contact, error) {
	for _, c := range r.contacts {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memContactRepo) ListByGroup(groupID int64) ([]model.Contact, error) {
	out := []model.Contact{}
	for _, c := range r.contacts {
		if c.GroupID == groupID {
			out = append(out, c)
		}
	}
	return out, nil
}

var _ repository.ContactRepositoryInterface = (*memContactRepo)(nil)

type memClientRepo struct {
	clients map[int64]*model.Client
}

func (r *memClientRepo) GetByID(id int64) (*model.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

var _ repository.ClientRepositoryInterface = (*memClientRepo)(nil)

type memTemplateRepo struct {
	templates map[int64]*model.Template
}

func (r *memTemplateRepo) GetByID(id int64) (*model.Template, error) {
	t, ok := r.templates[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

var _ repository.TemplateRepositoryInterface = (*memTemplateRepo)(nil)

type memReceiptRepo struct {
	mu   sync.Mutex
	logs []*model.ReceiptLog
}

func (r *memReceiptRepo) Create(l *model.ReceiptLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = int64(len(r.logs) + 1)
	cp := *l
	r.logs = append(r.logs, &cp)
	return nil
}

func (r *memReceiptRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.logs)
}

func (r *memReceiptRepo) last() *model.ReceiptLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.logs) == 0 {
		return nil
	}
	cp := *r.logs[len(r.logs)-1]
	return &cp
}

var _ repository.ReceiptLogRepositoryInterface = (*memReceiptRepo)(nil)

// fakeSender records requests and replays scripted responses; unscripted
// calls succeed with a generated transaction id.
type fakeSender struct {
	mu        sync.Mutex
	requests  []provider.SendRequest
	responses []fakeResponse
	onSend    func(req provider.SendRequest)
}

type fakeResponse struct {
	resp *provider.SendResponse
	err  error
}

func (s *fakeSender) Send(ctx context.Context, req provider.SendRequest) (*provider.SendResponse, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	n := len(s.requests)
	var scripted *fakeResponse
	if len(s.responses) > 0 {
		r := s.responses[0]
		s.responses = s.responses[1:]
		scripted = &r
	}
	hook := s.onSend
	s.mu.Unlock()

	if hook != nil {
		hook(req)
	}
	if scripted != nil {
		return scripted.resp, scripted.err
	}
	return &provider.SendResponse{
		Status:        "success",
		TransactionID: fmt.Sprintf("txn-%d", n),
		MessageID:     fmt.Sprintf("wamid-%d", n),
	}, nil
}

func (s *fakeSender) sent() []provider.SendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]provider.SendRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

var _ provider.Sender = (*fakeSender)(nil)

func testClient() *model.Client {
	return &model.Client{
		ID:             1,
		Name:           "Test Client",
		APIKey:         "key-123",
		WhatsAppNumber: "919800000001",
		Active:         true,
	}
}

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainbooking "staymarket/internal/domain/booking"
	domainmessaging "staymarket/internal/domain/messaging"
	domainpayout "staymarket/internal/domain/payout"
	domainproperty "staymarket/internal/domain/property"
	domainuser "staymarket/internal/domain/user"
	"staymarket/internal/domain/shared/money"
)

// PropertyRepository keeps listings in memory, used for local development and
// tests.
type PropertyRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.PropertyID]*domainproperty.Property
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{items: make(map[domainproperty.PropertyID]*domainproperty.Property)}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prop, ok := r.items[id]
	if !ok {
		return nil, domainproperty.ErrPropertyNotFound
	}
	return cloneProperty(prop), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneProperty(p)
	stored.Version = p.Version + 1
	p.Version = stored.Version
	r.items[p.ID] = stored
	return nil
}

func (r *PropertyRepository) Search(ctx context.Context, params domainproperty.SearchParams) (domainproperty.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainproperty.Property, 0, len(r.items))
	for _, p := range r.items {
		select {
		case <-ctx.Done():
			return domainproperty.SearchResult{}, ctx.Err()
		default:
		}

		if opts.VisibleOnly && !p.Visible() {
			continue
		}
		if opts.Host != "" && p.Host != opts.Host {
			continue
		}
		if opts.Location != "" && !matchLocation(p, opts.Location) {
			continue
		}
		if opts.MinGuests > 0 && p.GuestLimit < opts.MinGuests {
			continue
		}
		if opts.PriceMinCents > 0 && p.NightlyRate.Amount < opts.PriceMinCents {
			continue
		}
		if opts.PriceMaxCents > 0 && p.NightlyRate.Amount > opts.PriceMaxCents {
			continue
		}
		matches = append(matches, cloneProperty(p))
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].NightlyRate.Amount == matches[j].NightlyRate.Amount {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].NightlyRate.Amount < matches[j].NightlyRate.Amount
	})

	total := len(matches)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return domainproperty.SearchResult{Items: matches[start:end], Total: total}, nil
}

func (r *PropertyRepository) ListByHost(ctx context.Context, host domainproperty.HostID) ([]*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainproperty.Property, 0)
	for _, p := range r.items {
		if p.Host == host {
			out = append(out, cloneProperty(p))
		}
	}
	return out, nil
}

func matchLocation(p *domainproperty.Property, needle string) bool {
	haystack := strings.ToLower(p.Location + " " + p.Title)
	return strings.Contains(haystack, strings.ToLower(strings.TrimSpace(needle)))
}

func cloneProperty(p *domainproperty.Property) *domainproperty.Property {
	if p == nil {
		return nil
	}
	out := *p
	out.PhotoURLs = append([]string(nil), p.PhotoURLs...)
	return &out
}

// BookingRepository stores bookings in memory. Host scoped listing resolves
// ownership through the property repository.
type BookingRepository struct {
	mu         sync.RWMutex
	items      map[domainbooking.BookingID]*domainbooking.Booking
	properties *PropertyRepository
}

func NewBookingRepository(properties *PropertyRepository) *BookingRepository {
	return &BookingRepository{
		items:      make(map[domainbooking.BookingID]*domainbooking.Booking),
		properties: properties,
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneBooking(b)
	stored.Version = b.Version + 1
	b.Version = stored.Version
	r.items[b.ID] = stored
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.BookingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainbooking.ErrBookingNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.GuestID == guestID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (r *BookingRepository) ListByProperty(ctx context.Context, id domainproperty.PropertyID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.PropertyID == id {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (r *BookingRepository) ListByHostAndStatus(ctx context.Context, hostID domainproperty.HostID, status domainbooking.Status) ([]*domainbooking.Booking, error) {
	owned := make(map[domainproperty.PropertyID]struct{})
	if r.properties != nil {
		listings, err := r.properties.ListByHost(ctx, hostID)
		if err != nil {
			return nil, err
		}
		for _, p := range listings {
			owned[p.ID] = struct{}{}
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if _, ok := owned[b.PropertyID]; !ok {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, cloneBooking(b))
	}
	return out, nil
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	if b == nil {
		return nil
	}
	out := *b
	out.ClearEvents()
	return &out
}

// PayoutRepository is the in-memory payout ledger.
type PayoutRepository struct {
	mu    sync.RWMutex
	items map[domainpayout.PayoutID]*domainpayout.Payout
}

func NewPayoutRepository() *PayoutRepository {
	return &PayoutRepository{items: make(map[domainpayout.PayoutID]*domainpayout.Payout)}
}

func (r *PayoutRepository) ByID(ctx context.Context, id domainpayout.PayoutID) (*domainpayout.Payout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domainpayout.ErrPayoutNotFound
	}
	return clonePayout(p), nil
}

func (r *PayoutRepository) Save(ctx context.Context, p *domainpayout.Payout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = clonePayout(p)
	return nil
}

func (r *PayoutRepository) ListByHost(ctx context.Context, host domainproperty.HostID) ([]*domainpayout.Payout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainpayout.Payout, 0)
	for _, p := range r.items {
		if p.Host == host {
			out = append(out, clonePayout(p))
		}
	}
	return out, nil
}

func (r *PayoutRepository) SumByHostAndStatuses(ctx context.Context, host domainproperty.HostID, statuses []domainpayout.Status) (money.Money, error) {
	wanted := make(map[domainpayout.Status]struct{}, len(statuses))
	for _, s := range statuses {
		wanted[s] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum money.Money
	for _, p := range r.items {
		if p.Host != host {
			continue
		}
		if _, ok := wanted[p.Status]; !ok {
			continue
		}
		if sum.Currency == "" {
			sum.Currency = p.Amount.Currency
		}
		added, err := sum.Add(p.Amount)
		if err != nil {
			return money.Money{}, err
		}
		sum = added
	}
	return sum, nil
}

func clonePayout(p *domainpayout.Payout) *domainpayout.Payout {
	if p == nil {
		return nil
	}
	out := *p
	out.ClearEvents()
	return &out
}

// SequenceCounter hands out payout numbers under a mutex, mirroring what the
// counters collection does in Mongo.
type SequenceCounter struct {
	mu      sync.Mutex
	current int64
}

func NewSequenceCounter(start int64) *SequenceCounter {
	return &SequenceCounter{current: start}
}

func (s *SequenceCounter) Next(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current++
	return s.current, nil
}

// ConversationRepository keeps chat threads and their messages in memory.
type ConversationRepository struct {
	mu       sync.RWMutex
	items    map[domainmessaging.ConversationID]*domainmessaging.Conversation
	byPair   map[string]domainmessaging.ConversationID
	messages map[domainmessaging.ConversationID][]*domainmessaging.Message
}

func NewConversationRepository() *ConversationRepository {
	return &ConversationRepository{
		items:    make(map[domainmessaging.ConversationID]*domainmessaging.Conversation),
		byPair:   make(map[string]domainmessaging.ConversationID),
		messages: make(map[domainmessaging.ConversationID][]*domainmessaging.Message),
	}
}

func pairKey(guest domainuser.ID, prop domainproperty.PropertyID) string {
	return string(guest) + "|" + string(prop)
}

func (r *ConversationRepository) ByID(ctx context.Context, id domainmessaging.ConversationID) (*domainmessaging.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, domainmessaging.ErrConversationNotFound
	}
	return cloneConversation(c), nil
}

func (r *ConversationRepository) ByParticipants(ctx context.Context, guest domainuser.ID, prop domainproperty.PropertyID) (*domainmessaging.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPair[pairKey(guest, prop)]
	if !ok {
		return nil, domainmessaging.ErrConversationNotFound
	}
	return cloneConversation(r.items[id]), nil
}

func (r *ConversationRepository) Save(ctx context.Context, c *domainmessaging.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID] = cloneConversation(c)
	r.byPair[pairKey(c.GuestID, c.PropertyID)] = c.ID
	return nil
}

func (r *ConversationRepository) ListByGuest(ctx context.Context, guest domainuser.ID) ([]*domainmessaging.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainmessaging.Conversation, 0)
	for _, c := range r.items {
		if c.GuestID == guest {
			out = append(out, cloneConversation(c))
		}
	}
	return out, nil
}

func (r *ConversationRepository) ListByProperty(ctx context.Context, prop domainproperty.PropertyID) ([]*domainmessaging.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainmessaging.Conversation, 0)
	for _, c := range r.items {
		if c.PropertyID == prop {
			out = append(out, cloneConversation(c))
		}
	}
	return out, nil
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, m *domainmessaging.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[m.ConversationID]; !ok {
		return domainmessaging.ErrConversationNotFound
	}
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], cloneMessage(m))
	return nil
}

func (r *ConversationRepository) Messages(ctx context.Context, id domainmessaging.ConversationID) ([]*domainmessaging.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.items[id]; !ok {
		return nil, domainmessaging.ErrConversationNotFound
	}
	stored := r.messages[id]
	out := make([]*domainmessaging.Message, 0, len(stored))
	for _, m := range stored {
		out = append(out, cloneMessage(m))
	}
	return out, nil
}

func (r *ConversationRepository) MarkRead(ctx context.Context, id domainmessaging.ConversationID, reader domainmessaging.SenderRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainmessaging.ErrConversationNotFound
	}
	for _, m := range r.messages[id] {
		if m.Sender != reader {
			m.Read = true
		}
	}
	return nil
}

func cloneConversation(c *domainmessaging.Conversation) *domainmessaging.Conversation {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

func cloneMessage(m *domainmessaging.Message) *domainmessaging.Message {
	if m == nil {
		return nil
	}
	out := *m
	out.Attachments = append([]domainmessaging.Attachment(nil), m.Attachments...)
	return &out
}

var _ domainproperty.Repository = (*PropertyRepository)(nil)
var _ domainbooking.Repository = (*BookingRepository)(nil)
var _ domainpayout.Repository = (*PayoutRepository)(nil)
var _ domainpayout.Sequence = (*SequenceCounter)(nil)
var _ domainmessaging.Repository = (*ConversationRepository)(nil)

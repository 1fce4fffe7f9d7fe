package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/domain/entity"
	"github.com/garyjia/procurement-drafts/pkg/clock"
)

// Sequencer numbers documents per kind and year without persistence.
type Sequencer struct {
	mu       sync.Mutex
	clock    clock.Clock
	prefixes map[string]string
	counters map[string]int
}

func NewSequencer(prefixes map[string]string, clk clock.Clock) *Sequencer {
	if clk == nil {
		clk = clock.System()
	}
	p := make(map[string]string, len(prefixes))
	for k, v := range prefixes {
		p[strings.ToUpper(k)] = v
	}
	return &Sequencer{clock: clk, prefixes: p, counters: make(map[string]int)}
}

func (s *Sequencer) NextNumber(ctx context.Context, kind entity.DocumentKind) (string, error) {
	if !kind.IsValid() {
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
	year := s.clock.Now().Year()
	prefix := string(kind)
	if p := s.prefixes[prefix]; p != "" {
		prefix = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%s/%d", kind, year)
	s.counters[key]++
	return fmt.Sprintf("%s-%04d-%04d", prefix, year, s.counters[key]), nil
}

// Rates is an in-memory exchange-rate table.
type Rates struct {
	mu    sync.RWMutex
	clock clock.Clock
	rates map[[2]string]*entity.ExchangeRate
}

func NewRates(clk clock.Clock) *Rates {
	if clk == nil {
		clk = clock.System()
	}
	return &Rates{clock: clk, rates: make(map[[2]string]*entity.ExchangeRate)}
}

func (r *Rates) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rate, ok := r.rates[[2]string{from, to}]; ok {
		return rate.Rate, nil
	}
	if inv, ok := r.rates[[2]string{to, from}]; ok && inv.Rate.IsPositive() {
		return decimal.NewFromInt(1).DivRound(inv.Rate, 10), nil
	}
	return decimal.Zero, fmt.Errorf("rate %s/%s: %w", from, to, port.ErrNotFound)
}

func (r *Rates) Upsert(ctx context.Context, rate *entity.ExchangeRate) error {
	if rate == nil || !rate.Rate.IsPositive() {
		return fmt.Errorf("rate must be positive")
	}
	from, to := strings.ToUpper(rate.From), strings.ToUpper(rate.To)
	if from == "" || to == "" || from == to {
		return fmt.Errorf("invalid currency pair %q/%q", rate.From, rate.To)
	}
	stored := &entity.ExchangeRate{From: from, To: to, Rate: rate.Rate, UpdatedAt: r.clock.Now()}
	*rate = *stored

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates[[2]string{from, to}] = stored
	return nil
}

func (r *Rates) List(ctx context.Context) ([]*entity.ExchangeRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.ExchangeRate, 0, len(r.rates))
	for _, rate := range r.rates {
		c := *rate
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out, nil
}

// MasterData is an in-memory reference-data table.
type MasterData struct {
	mu    sync.RWMutex
	items map[entity.ReferenceKind][]entity.ReferenceItem
}

func NewMasterData() *MasterData {
	return &MasterData{items: make(map[entity.ReferenceKind][]entity.ReferenceItem)}
}

// Put adds or replaces items; their Kind field selects the list.
func (m *MasterData) Put(items ...entity.ReferenceItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		list := m.items[it.Kind]
		replaced := false
		for i := range list {
			if list[i].ID == it.ID {
				list[i] = it
				replaced = true
			}
		}
		if !replaced {
			list = append(list, it)
		}
		m.items[it.Kind] = list
	}
}

func (m *MasterData) List(ctx context.Context, kind entity.ReferenceKind) ([]entity.ReferenceItem, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown reference kind %q", kind)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []entity.ReferenceItem{}
	for _, it := range m.items[kind] {
		if it.Active {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *MasterData) GetByID(ctx context.Context, kind entity.ReferenceKind, id string) (*entity.ReferenceItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, it := range m.items[kind] {
		if it.ID == id {
			c := it
			return &c, nil
		}
	}
	return nil, nil
}

// TxManager runs fn directly; the memory stores lock per call.
type TxManager struct{}

func (TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var (
	_ port.NumberSequencer    = (*Sequencer)(nil)
	_ port.ExchangeRateStore  = (*Rates)(nil)
	_ port.MasterDataLookup   = (*MasterData)(nil)
	_ port.TransactionManager = TxManager{}
)

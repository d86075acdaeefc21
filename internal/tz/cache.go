package tz

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"icalcodec/internal/component"
	appLog "icalcodec/internal/log"
)

// Provider supplies zones the process already knows about.
type Provider interface {
	// Resolve returns the table for tzid or an error wrapping
	// ErrUnknownTimezone.
	Resolve(tzid string) (*Table, error)
	// Localize maps a wall clock in tzid to an instant.
	Localize(wall time.Time, tzid string) (time.Time, error)
}

// SystemProvider serves zones from the Go time zone database. Tables are
// synthesized for [FirstYear, LastYear).
type SystemProvider struct {
	FirstYear int
	LastYear  int

	mu   sync.Mutex
	locs map[string]*time.Location
}

// NewSystemProvider returns a provider with the given synthesis horizon.
func NewSystemProvider(firstYear, lastYear int) *SystemProvider {
	return &SystemProvider{FirstYear: firstYear, LastYear: lastYear}
}

func (p *SystemProvider) location(tzid string) (*time.Location, error) {
	if tzid == "" || strings.EqualFold(tzid, "Local") {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, tzid)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if loc, ok := p.locs[tzid]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(tzid)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnknownTimezone, tzid, err)
	}
	if p.locs == nil {
		p.locs = map[string]*time.Location{}
	}
	p.locs[tzid] = loc
	return loc, nil
}

func (p *SystemProvider) Resolve(tzid string) (*Table, error) {
	loc, err := p.location(tzid)
	if err != nil {
		return nil, err
	}
	t, err := SynthesizeLocation(loc, p.FirstYear, p.LastYear)
	if err != nil {
		return nil, err
	}
	t.TZID = tzid
	return t, nil
}

func (p *SystemProvider) Localize(wall time.Time, tzid string) (time.Time, error) {
	loc, err := p.location(tzid)
	if err != nil {
		return time.Time{}, err
	}
	return localize(LocationZone{Loc: loc}, wall).In(loc), nil
}

// Cache holds transition tables by TZID. It starts empty, each TZID is
// written at most once and entries are never evicted. All methods are safe
// for concurrent use.
type Cache struct {
	provider   Provider
	cutoffYear int

	mu     sync.RWMutex
	tables map[string]*Table
	// embedded marks tables registered from VTIMEZONE components.
	embedded map[string]bool
}

// NewCache returns an empty cache. A nil provider knows no zones.
func NewCache(p Provider, cutoffYear int) *Cache {
	return &Cache{
		provider:   p,
		cutoffYear: cutoffYear,
		tables:     map[string]*Table{},
		embedded:   map[string]bool{},
	}
}

var (
	sharedOnce sync.Once
	shared     *Cache
)

// Shared returns the process-wide cache backed by the system zone
// database.
func Shared() *Cache {
	sharedOnce.Do(func() {
		shared = NewCache(NewSystemProvider(1970, DefaultCutoffYear), DefaultCutoffYear)
	})
	return shared
}

// Get returns a cached table.
func (c *Cache) Get(tzid string) (*Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[tzid]
	return t, ok
}

// LoadOrStore stores t unless tzid is already cached and returns the
// cached table. loaded reports whether an earlier table won.
func (c *Cache) LoadOrStore(tzid string, t *Table) (actual *Table, loaded bool) {
	return c.store(tzid, t, false)
}

func (c *Cache) store(tzid string, t *Table, embedded bool) (*Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.tables[tzid]; ok {
		return old, true
	}
	c.tables[tzid] = t
	if embedded {
		c.embedded[tzid] = true
	}
	return t, false
}

// Resolve returns the cached table for tzid, asking the provider on a miss.
func (c *Cache) Resolve(tzid string) (*Table, error) {
	if t, ok := c.Get(tzid); ok {
		return t, nil
	}
	if c.provider == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTimezone, tzid)
	}
	t, err := c.provider.Resolve(tzid)
	if err != nil {
		return nil, err
	}
	actual, _ := c.LoadOrStore(tzid, t)
	return actual, nil
}

// Register reads a closed VTIMEZONE into the cache unless its TZID is
// already known to the cache or the provider. Other components are
// ignored, so Register can be used directly as a parser close hook.
func (c *Cache) Register(comp *component.Component) error {
	if comp.Name != "VTIMEZONE" {
		return nil
	}
	tzid, err := text(comp, "TZID")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimezoneComponent, err)
	}
	if _, err := c.Resolve(tzid); err == nil {
		return nil
	} else if !errors.Is(err, ErrUnknownTimezone) {
		return err
	}
	t, err := FromComponent(comp, c.cutoffYear)
	if err != nil {
		return err
	}
	if _, loaded := c.store(tzid, t, true); !loaded {
		appLog.Info("timezone registered", "tzid", tzid, "transitions", len(t.Transitions))
	}
	return nil
}

// Localize implements value.Localizer. Zones read from VTIMEZONE
// components use their table; everything else goes through the provider.
func (c *Cache) Localize(wall time.Time, tzid string) (time.Time, error) {
	c.mu.RLock()
	t, embedded := c.tables[tzid], c.embedded[tzid]
	c.mu.RUnlock()
	if embedded {
		return t.Localize(wall), nil
	}
	if c.provider != nil {
		if at, err := c.provider.Localize(wall, tzid); err == nil {
			return at, nil
		}
	}
	if t != nil {
		return t.Localize(wall), nil
	}
	return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownTimezone, tzid)
}

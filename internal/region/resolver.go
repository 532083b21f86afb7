package region

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"sateihub/server/config"
)

// Cache stores address-to-region resolutions. Implementations must be
// safe for concurrent use. The resolver never requires a cache; pass nil
// to disable caching entirely.
type Cache interface {
	Get(address string) (string, bool)
	Set(address, code string)
}

// MapCache is the default in-memory Cache.
type MapCache struct {
	mu    sync.RWMutex
	codes map[string]string
}

func NewMapCache() *MapCache {
	return &MapCache{codes: make(map[string]string)}
}

func (c *MapCache) Get(address string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	code, ok := c.codes[address]
	return code, ok
}

func (c *MapCache) Set(address, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[address] = code
}

// Resolver maps free-text addresses to administrative region codes via
// ordered substring matching against the fixed prefecture table. It
// never fails: unclassifiable addresses degrade to the default region.
type Resolver struct {
	logger *logrus.Logger
	cache  Cache
}

func NewResolver(logger *logrus.Logger, cache Cache) *Resolver {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Resolver{logger: logger, cache: cache}
}

// Resolve returns the region code for an address. The first prefecture
// name contained in the address wins; malformed or foreign addresses
// resolve to the default region code.
func (r *Resolver) Resolve(address string) string {
	if address == "" {
		return config.DefaultRegionCode
	}

	if r.cache != nil {
		if code, ok := r.cache.Get(address); ok {
			return code
		}
	}

	code := config.DefaultRegionCode
	for _, p := range config.Prefectures {
		if strings.Contains(address, p.Name) {
			code = p.Code
			break
		}
	}

	if code == config.DefaultRegionCode && address != "" {
		r.logger.WithField("address", address).Debug("Address did not match any region, using default")
	}

	if r.cache != nil {
		r.cache.Set(address, code)
	}
	return code
}

// ProfileFor returns the search profile for a region code. Pure lookup
// with a guaranteed default entry.
func (r *Resolver) ProfileFor(code string) config.RegionProfile {
	return config.ProfileFor(code)
}

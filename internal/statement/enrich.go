package statement

import (
	"context"
	"sync"

	"github.com/glowdesk/walletd/internal/gateway/salonapi"
	"github.com/glowdesk/walletd/internal/ledger"
	"github.com/glowdesk/walletd/pkg/logger"
)

// counterpartyNameKey is where a resolved display name is backfilled into
// transaction metadata.
const counterpartyNameKey = "counterpartyName"

// counterpartyName extracts the display name for a row, if one is present
// or has been backfilled.
func counterpartyName(tx *ledger.Transaction) string {
	for _, key := range []string{counterpartyNameKey, "counterparty_name"} {
		if name, ok := tx.Metadata[key].(string); ok && name != "" {
			return name
		}
	}
	return ""
}

// counterpartyID extracts the referenced counterparty user id, if any.
func counterpartyID(tx *ledger.Transaction) string {
	for _, key := range []string{"counterpartyId", "counterparty_id", "recipientId", "recipient_id"} {
		if id, ok := tx.Metadata[key].(string); ok && id != "" {
			return id
		}
	}
	return ""
}

// NameCache maps counterparty user ids to display names for the lifetime
// of the app session. Writers all agree on the underlying truth (a stable
// id → name mapping), so last-writer-wins is fine.
type NameCache struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewNameCache creates an empty name cache
func NewNameCache() *NameCache {
	return &NameCache{names: make(map[string]string)}
}

// Get returns the cached name for a user id.
func (c *NameCache) Get(userID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[userID]
	return name, ok
}

// Put stores a resolved name.
func (c *NameCache) Put(userID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[userID] = name
}

// NameLookup resolves user ids to display names in one batch call.
type NameLookup interface {
	LookupUserNames(ctx context.Context, userIDs []string) ([]salonapi.UserName, error)
}

// Enricher backfills counterparty display names onto commission-linked
// transactions. Best-effort: lookup failures are swallowed and the rows
// simply stay nameless.
type Enricher struct {
	lookup NameLookup
	cache  *NameCache
	logger *logger.Logger
}

// NewEnricher creates an enricher sharing the given name cache
func NewEnricher(lookup NameLookup, cache *NameCache, log *logger.Logger) *Enricher {
	return &Enricher{
		lookup: lookup,
		cache:  cache,
		logger: log.WithField("component", "enricher"),
	}
}

// Enrich resolves missing counterparty names for the page in a single batch
// request. Cached names are served without a network call; newly resolved
// names are cached for subsequent renders and searches.
func (e *Enricher) Enrich(ctx context.Context, txs []*ledger.Transaction) {
	// Rows still missing a name after the cache pass, keyed by user id
	pending := make(map[string][]*ledger.Transaction)

	for _, tx := range txs {
		if !isCommissionLinked(tx) || counterpartyName(tx) != "" {
			continue
		}
		id := counterpartyID(tx)
		if id == "" {
			continue
		}
		if name, ok := e.cache.Get(id); ok {
			tx.Metadata[counterpartyNameKey] = name
			continue
		}
		pending[id] = append(pending[id], tx)
	}

	if len(pending) == 0 {
		return
	}

	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}

	names, err := e.lookup.LookupUserNames(ctx, ids)
	if err != nil {
		// Never fail the statement over missing display names
		e.logger.Warn("counterparty name lookup failed", "ids", len(ids), "error", err)
		return
	}

	for _, n := range names {
		if n.FullName == "" {
			continue
		}
		e.cache.Put(n.ID, n.FullName)
		for _, tx := range pending[n.ID] {
			tx.Metadata[counterpartyNameKey] = n.FullName
		}
	}
}

package providerapi

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"smm-market/internal/storefront/data"
	"smm-market/pkg/logging"
)

type cachedClient struct {
	fingerprint string
	client      *Client
}

// ClientCache hands out one Client per provider and rebuilds it only when the
// provider's URL or API key changes.
type ClientCache struct {
	mux     sync.Mutex
	clients map[string]cachedClient
	timeout time.Duration
	logger  *logging.ZapLogger
}

func NewClientCache(timeout time.Duration, logger *logging.ZapLogger) *ClientCache {
	return &ClientCache{
		clients: make(map[string]cachedClient),
		timeout: timeout,
		logger:  logger,
	}
}

func (cc *ClientCache) Client(provider data.Provider) *Client {
	fingerprint := Fingerprint(provider.URL, provider.APIKey)

	cc.mux.Lock()
	defer cc.mux.Unlock()
	if cached, ok := cc.clients[provider.ID]; ok && cached.fingerprint == fingerprint {
		return cached.client
	}
	client := New(Config{URL: provider.URL, APIKey: provider.APIKey, Timeout: cc.timeout}, cc.logger)
	cc.clients[provider.ID] = cachedClient{fingerprint: fingerprint, client: client}
	return client
}

// Forget drops the cached client of a provider.
func (cc *ClientCache) Forget(providerID string) {
	cc.mux.Lock()
	defer cc.mux.Unlock()
	delete(cc.clients, providerID)
}

// Fingerprint identifies a set of connection credentials without keeping the
// key itself around.
func Fingerprint(url, apiKey string) string {
	sum := sha256.Sum256([]byte(strings.TrimRight(url, "/") + "\x00" + apiKey))
	return hex.EncodeToString(sum[:])
}

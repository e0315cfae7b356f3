package scraper

import (
	"sync"
)

const defaultUserAgentHead = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko)"

var defaultUserAgentVersions = []string{
	"Chrome/124.0.6367.91 Safari/537.36",
	"Chrome/124.0.6367.60 Safari/537.36",
	"Chrome/123.0.6312.122 Safari/537.36",
	"Chrome/123.0.6312.86 Safari/537.36",
	"Chrome/122.0.6261.129 Safari/537.36",
}

// UserAgentPool hands out user agents round robin. Each session owns its pool.
type UserAgentPool struct {
	mu     sync.Mutex
	agents []string
	index  int
}

func NewUserAgentPool(agents []string) *UserAgentPool {
	if len(agents) == 0 {
		agents = DefaultUserAgents()
	}
	return &UserAgentPool{
		agents: append([]string(nil), agents...),
		index:  -1,
	}
}

// DefaultUserAgents combines the common browser head with each version.
func DefaultUserAgents() []string {
	agents := make([]string, len(defaultUserAgentVersions))
	for i, v := range defaultUserAgentVersions {
		agents[i] = defaultUserAgentHead + " " + v
	}
	return agents
}

func (p *UserAgentPool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.index = (p.index + 1) % len(p.agents)
	return p.agents[p.index]
}

func (p *UserAgentPool) Len() int {
	return len(p.agents)
}

package browser

import (
	"math/rand"
	"sync"
)

// AgentPool hands out realistic desktop user agents so headless captures
// don't all announce the same fingerprint.
type AgentPool struct {
	agents []string
	mu     sync.Mutex
}

func NewAgentPool() *AgentPool {
	return &AgentPool{
		agents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
	}
}

// Pick returns a random user agent from the pool.
func (p *AgentPool) Pick() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.agents) == 0 {
		return ""
	}
	return p.agents[rand.Intn(len(p.agents))]
}

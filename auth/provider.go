package auth

import (
	"sync"

	"github.com/graphkit/graphkit/notify"
)

// Provider supplies the current credential, or nil when none is set.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Ownership: the returned Credential is shared read-only; never mutate it.
type Provider interface {
	Current() *Credential
}

// StaticProvider always returns the same credential. Useful for tests and
// for hosts managing token storage themselves.
type StaticProvider struct {
	credential *Credential
}

// NewStaticProvider creates a provider returning cred from every Current call.
func NewStaticProvider(cred *Credential) *StaticProvider {
	return &StaticProvider{credential: cred}
}

// Current returns the fixed credential.
func (p *StaticProvider) Current() *Credential {
	return p.credential
}

// NotifyingProvider holds the process-wide current credential and posts
// a CredentialChanged notification whenever it is replaced.
type NotifyingProvider struct {
	mu         sync.RWMutex
	credential *Credential
	channel    notify.Channel
}

// NewNotifyingProvider creates an empty provider posting changes to channel.
func NewNotifyingProvider(channel notify.Channel) *NotifyingProvider {
	return &NotifyingProvider{channel: channel}
}

// Current returns the credential most recently passed to Set, or nil.
func (p *NotifyingProvider) Current() *Credential {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.credential
}

// Set replaces the current credential and posts CredentialChanged. The
// notification carries the previous credential only if one existed.
func (p *NotifyingProvider) Set(cred *Credential) {
	p.mu.Lock()
	previous := p.credential
	p.credential = cred
	p.mu.Unlock()

	if p.channel == nil {
		return
	}
	change := notify.Change{Current: cred}
	if previous != nil {
		change.Previous = previous
	}
	p.channel.Post(notify.CredentialChanged, change)
}

var (
	_ Provider = (*StaticProvider)(nil)
	_ Provider = (*NotifyingProvider)(nil)
)

package repository

import (
	"context"
	"sync"

	"github.com/secmon-lab/ghauth/pkg/domain/interfaces"
	"github.com/secmon-lab/ghauth/pkg/domain/model/credential"
)

type credentialKey struct {
	realm   string
	account string
}

// Memory keeps credentials for the lifetime of the process.
type Memory struct {
	mu          sync.RWMutex
	credentials map[credentialKey]credential.Credential
}

var _ interfaces.CredentialStore = &Memory{}

func NewMemory() *Memory {
	return &Memory{
		credentials: make(map[credentialKey]credential.Credential),
	}
}

func (r *Memory) Get(ctx context.Context, realm, account string) (*credential.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cred, ok := r.credentials[credentialKey{realm, account}]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

func (r *Memory) Put(ctx context.Context, cred *credential.Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.credentials[credentialKey{cred.Realm, cred.Account}] = *cred
	return nil
}

func (r *Memory) Delete(ctx context.Context, realm, account string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.credentials, credentialKey{realm, account})
	return nil
}

package services

import "sync"

// companyLock serializes mutating rate operations per company. The
// default-currency change reads the whole currency/dated-rate set before
// rewriting it, so two writers interleaving on the same company would lose
// updates even with the store transaction underneath. Different companies
// share nothing and proceed concurrently.
type companyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newCompanyLock() *companyLock {
	return &companyLock{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for one company, creating it on first use.
// Returns the unlock function.
func (l *companyLock) Lock(companyID string) func() {
	l.mu.Lock()
	m, ok := l.locks[companyID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[companyID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

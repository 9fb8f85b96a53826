package repository

import (
	"sync"

	"github.com/dskvich/networker-bot/pkg/domain"
)

// stateRepository keeps the conversation state per user in memory.
type stateRepository struct {
	mu    sync.RWMutex
	state map[int64]domain.State
}

func NewStateRepository() *stateRepository {
	return &stateRepository{
		state: make(map[int64]domain.State),
	}
}

func (s *stateRepository) Save(userID int64, state domain.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state[userID] = state
}

func (s *stateRepository) Get(userID int64) (domain.State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, exists := s.state[userID]
	return state, exists
}

func (s *stateRepository) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.state, userID)
}

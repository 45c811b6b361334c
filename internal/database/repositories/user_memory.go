package repositories

import (
	"context"
	"notably/internal/database/models"
	"sync"

	"github.com/google/uuid"
)

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: map[string]models.User{}}
}

func (r *memoryUserRepository) Create(_ context.Context, insert models.InsertUser) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == insert.Username {
			return nil, ErrUsernameTaken
		}
	}
	user := models.User{
		ID:       uuid.NewString(),
		Username: insert.Username,
		Password: insert.Password,
	}
	r.users[user.ID] = user
	return &user, nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (r *memoryUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

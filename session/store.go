package session

import (
	"slices"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-gol-board/utils"
)

// Store owns every live session, keyed by id
type Store struct {
	cfg  utils.Config
	opts []Option

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore returns an empty store that builds sessions from cfg and opts
func NewStore(cfg utils.Config, opts ...Option) *Store {
	return &Store{
		cfg:      cfg,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session under id
func (st *Store) Create(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; ok {
		return nil, errors.Wrapf(ErrSessionExists, "[Store.Create] id: %s", id)
	}
	s, err := New(st.cfg, st.opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "[Store.Create] id: %s", id)
	}
	st.sessions[id] = s
	return s, nil
}

// Get returns the session under id
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSession, "[Store.Get] id: %s", id)
	}
	return s, nil
}

// Close ends the session under id and forgets it
func (st *Store) Close(id string) error {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if !ok {
		return errors.Wrapf(ErrUnknownSession, "[Store.Close] id: %s", id)
	}
	return s.Close()
}

// IDs returns the ids of live sessions in sorted order
func (st *Store) IDs() []string {
	st.mu.Lock()
	defer st.mu.Unlock()

	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// CloseAll ends every session concurrently and empties the store
func (st *Store) CloseAll() error {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	var eg errgroup.Group
	for id, s := range sessions {
		eg.Go(func() error {
			return errors.Wrapf(s.Close(), "[Store.CloseAll] id: %s", id)
		})
	}
	return eg.Wait()
}

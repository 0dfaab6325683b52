// Package posts keeps an in-memory view of a user's saved posts in step
// with the database. Every mutation is followed by a full refetch, so the
// view always reflects store-assigned fields and ownership filtering.
package posts

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Ferdinando4570/content-forge-magic/internal/models"
)

// Store is the persistence surface the synchronizer talks to. List must
// return posts newest first; Delete must enforce ownership.
type Store interface {
	List(ctx context.Context, userID int64) ([]models.GeneratedPost, error)
	Insert(ctx context.Context, userID int64, content, platform, prompt string) (string, error)
	Delete(ctx context.Context, id string, userID int64) error
}

// Notifier receives the generic user-facing message for a failed
// operation. Error detail stays in the log.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(string)

func (f NotifierFunc) Notify(message string) { f(message) }

// User-facing messages, matching the app's notification wording.
const (
	MsgLoadFailed   = "Não foi possível carregar o histórico de posts."
	MsgSaveFailed   = "Não foi possível salvar o post."
	MsgRemoveFailed = "Não foi possível excluir o post."
)

const (
	DefaultTimeout = 10 * time.Second
	loadRetries    = 2
)

// Synchronizer owns the post list for one user. A zero user id means no
// authenticated session: every operation is a silent no-op and the list
// stays empty. Methods are safe for concurrent use.
type Synchronizer struct {
	store   Store
	userID  int64
	timeout time.Duration
	log     *zap.Logger
	notify  Notifier

	group singleflight.Group

	mu       sync.Mutex
	posts    []models.GeneratedPost
	inFlight int
}

// NewSynchronizer binds a synchronizer to userID. Zero values are
// tolerated: a nil logger becomes a no-op logger, a nil notifier drops
// messages, a zero timeout becomes DefaultTimeout.
func NewSynchronizer(store Store, userID int64, timeout time.Duration, log *zap.Logger, notify Notifier) *Synchronizer {
	if log == nil {
		log = zap.NewNop()
	}
	if notify == nil {
		notify = NotifierFunc(func(string) {})
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Synchronizer{
		store:   store,
		userID:  userID,
		timeout: timeout,
		log:     log.With(zap.Int64("user_id", userID)),
		notify:  notify,
	}
}

// Authenticated reports whether the synchronizer is bound to a real user.
func (s *Synchronizer) Authenticated() bool { return s.userID != 0 }

// Posts returns a snapshot of the current list, newest first.
func (s *Synchronizer) Posts() []models.GeneratedPost {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.GeneratedPost, len(s.posts))
	copy(out, s.posts)
	return out
}

// Busy reports whether any store operation is in flight.
func (s *Synchronizer) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

func (s *Synchronizer) enter() {
	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()
}

func (s *Synchronizer) exit() {
	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
}

// Load refetches the full list and replaces the in-memory copy.
// Overlapping calls collapse into one store fetch; transient failures are
// retried with exponential backoff. On failure the list is untouched.
func (s *Synchronizer) Load(ctx context.Context) error {
	if !s.Authenticated() {
		return nil
	}
	s.enter()
	defer s.exit()

	_, err, _ := s.group.Do("load", func() (any, error) {
		// Coalesced followers share this fetch; it must not die with the
		// first caller's context. Only the timeout bounds it.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		var fetched []models.GeneratedPost
		op := func() error {
			var err error
			fetched, err = s.store.List(ctx, s.userID)
			return err
		}
		bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), loadRetries), ctx)
		if err := backoff.Retry(op, bo); err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.posts = fetched
		s.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		s.log.Error("load posts failed", zap.Error(err))
		s.notify.Notify(MsgLoadFailed)
		return err
	}
	return nil
}

// Save inserts one post and resynchronizes. The id and created_at come
// back via the refetch, never from a local patch.
func (s *Synchronizer) Save(ctx context.Context, content, platform, prompt string) error {
	if !s.Authenticated() {
		return nil
	}
	s.enter()
	err := func() error {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		_, err := s.store.Insert(ctx, s.userID, content, platform, prompt)
		return err
	}()
	s.exit()
	if err != nil {
		s.log.Error("save post failed", zap.Error(err))
		s.notify.Notify(MsgSaveFailed)
		return err
	}
	return s.Load(ctx)
}

// Remove deletes one post by id and resynchronizes. Ownership is enforced
// by the store; a foreign or unknown id fails without touching the list.
func (s *Synchronizer) Remove(ctx context.Context, id string) error {
	if !s.Authenticated() {
		return nil
	}
	s.enter()
	err := func() error {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.store.Delete(ctx, id, s.userID)
	}()
	s.exit()
	if err != nil {
		if errors.Is(err, models.ErrPostNotFound) {
			s.log.Warn("remove post: not found", zap.String("post_id", id))
		} else {
			s.log.Error("remove post failed", zap.String("post_id", id), zap.Error(err))
		}
		s.notify.Notify(MsgRemoveFailed)
		return err
	}
	return s.Load(ctx)
}

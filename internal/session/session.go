package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/shoplist/internal/list"
	"github.com/dukerupert/shoplist/internal/model"
)

// Persistence keys.
const (
	KeyHistory    = "@purchaseHistory"
	KeyTemplates  = "@savedLists"
	KeyCategories = "@appCategories"
	KeyLists      = "@appLists"
)

var (
	ErrNotReady = errors.New("session not ready")
	ErrClosed   = errors.New("session closed")
)

// Gateway reads and writes serialized values by key.
type Gateway interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// ConfirmFunc asks the user to confirm a destructive action.
type ConfirmFunc func(title, message string) bool

type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a user-facing message about an explicit action.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
}

type Notifier interface {
	Notify(Notice)
}

// Change describes a state change that was applied in memory.
type Change struct {
	Entity string
	Action string
	ID     string
	List   model.ListType
}

type Broadcaster interface {
	Publish(Change)
}

// Metrics receives counters from the session. metrics.Collector implements it.
type Metrics interface {
	Mutation(op string)
	Write(key string, err error)
	LoadFallback(key string)
	Items(lt model.ListType, n int)
}

type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusReady
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusClosed:
		return "closed"
	default:
		return "uninitialized"
	}
}

// Session holds every list in memory and writes changes back through a
// Gateway. All methods are safe for concurrent use.
type Session struct {
	gw           Gateway
	logger       *slog.Logger
	newID        func() string
	now          func() time.Time
	notifier     Notifier
	broadcaster  Broadcaster
	metrics      Metrics
	onWriteError func(key string, err error)

	mu     sync.Mutex
	status Status
	active model.ListType
	state  list.State
	views  *list.ViewCache
	outbox *outbox
}

type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithIDFunc replaces the id generator, which defaults to random UUIDs.
func WithIDFunc(fn func() string) Option {
	return func(s *Session) { s.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(s *Session) { s.now = fn }
}

func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

func WithBroadcaster(b Broadcaster) Option {
	return func(s *Session) { s.broadcaster = b }
}

func WithMetrics(m Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// OnWriteError registers a hook for failed background writes. The in-memory
// state is never rolled back.
func OnWriteError(fn func(key string, err error)) Option {
	return func(s *Session) { s.onWriteError = fn }
}

func New(gw Gateway, opts ...Option) *Session {
	s := &Session{
		gw:     gw,
		logger: slog.Default(),
		newID:  uuid.NewString,
		now:    time.Now,
		active: model.ListGrocery,
		state:  list.SeedState(),
		views:  list.NewViewCache(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "session")
	return s
}

// Open loads persisted state and makes the session ready. Unreadable keys
// fall back to their defaults, so Open only fails when called twice.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusUninitialized {
		st := s.status
		s.mu.Unlock()
		return fmt.Errorf("open session: already %s", st)
	}
	s.status = StatusLoading
	s.mu.Unlock()

	start := time.Now()
	state := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusLoading {
		s.logger.Info("session closed while loading")
		return fmt.Errorf("open session: %w", ErrClosed)
	}
	s.state = state
	s.outbox = newOutbox(s.gw, s.logger, s.writeResult)
	s.outbox.start()
	s.status = StatusReady
	for _, lt := range model.ListTypes() {
		s.recordItems(lt)
	}
	s.logger.Info("session ready",
		"items", state.ItemCount(),
		"purchases", len(state.History),
		"templates", len(state.Templates),
		"duration", time.Since(start),
	)
	return nil
}

// Flush waits until every background write queued so far has been attempted.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	ob := s.outbox
	s.mu.Unlock()
	if ob == nil {
		return nil
	}
	return ob.flush(ctx)
}

// Close flushes pending writes and stops the session. Later mutations
// return ErrClosed.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.status == StatusClosed {
		s.mu.Unlock()
		return nil
	}
	s.status = StatusClosed
	ob := s.outbox
	s.mu.Unlock()

	if ob == nil {
		return nil
	}
	if err := ob.close(ctx); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	s.logger.Info("session closed")
	return nil
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) ActiveListType() model.ListType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActiveListType switches which list every item operation targets.
// Nothing in the previously active list changes.
func (s *Session) SetActiveListType(lt model.ListType) error {
	if _, err := model.ParseListType(string(lt)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return err
	}
	if s.active == lt {
		return nil
	}
	s.active = lt
	s.publishLocked("list", "switched", "")
	return nil
}

// Items returns the active collection. Callers must not modify it.
func (s *Session) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Lists[s.active]
}

func (s *Session) ActiveCategories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Categories[s.active]
}

func (s *Session) History() []model.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.History
}

func (s *Session) Purchase(id string) (model.Purchase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return list.FindPurchase(s.state.History, id)
}

func (s *Session) Templates() []model.SavedList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Templates
}

func (s *Session) Template(id string) (model.SavedList, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return list.FindTemplate(s.state.Templates, id)
}

// Views returns the derived views of the active list, recomputed only when
// its items or categories changed.
func (s *Session) Views() list.Views {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views.Get(s.active, s.state.Lists[s.active], s.state.Categories[s.active])
}

// ViewCacheStats reports memo hits and misses.
func (s *Session) ViewCacheStats() (hits, misses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views.Stats()
}

// Snapshot returns the whole state. The maps are copies; the slices are
// shared and must be treated as read-only.
func (s *Session) Snapshot() list.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Lists = make(map[model.ListType][]model.Item, len(s.state.Lists))
	for k, v := range s.state.Lists {
		st.Lists[k] = v
	}
	st.Categories = make(map[model.ListType][]string, len(s.state.Categories))
	for k, v := range s.state.Categories {
		st.Categories[k] = v
	}
	return st
}

// Restore replaces the whole state, for example from a backup, and writes
// every key back.
func (s *Session) Restore(ctx context.Context, st list.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return err
	}
	s.state = list.Normalize(st)
	s.mutationLocked("restore")
	for _, lt := range model.ListTypes() {
		s.recordItems(lt)
	}
	s.persistListsLocked()
	s.publishLocked("state", "restored", "")

	var errs []error
	errs = append(errs, s.writeLocked(ctx, KeyHistory, s.state.History))
	errs = append(errs, s.writeLocked(ctx, KeyTemplates, s.state.Templates))
	errs = append(errs, s.writeLocked(ctx, KeyCategories, s.state.Categories))
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	return s.outbox.flush(ctx)
}

func (s *Session) readyLocked() error {
	switch s.status {
	case StatusReady:
		return nil
	case StatusClosed:
		return ErrClosed
	default:
		return ErrNotReady
	}
}

// setItemsLocked replaces the active collection and queues the write of
// every list.
func (s *Session) setItemsLocked(items []model.Item) {
	s.state = list.WithItems(s.state, s.active, items)
	s.recordItems(s.active)
	s.persistListsLocked()
}

func (s *Session) persistListsLocked() {
	data, err := json.Marshal(s.state.Lists)
	if err != nil {
		s.logger.Error("marshal lists", "error", err)
		return
	}
	s.outbox.enqueue(KeyLists, string(data))
}

// writeLocked persists v under key and waits for the result.
func (s *Session) writeLocked(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.storeLocked(ctx, key, data)
}

func (s *Session) storeLocked(ctx context.Context, key string, data []byte) error {
	err := s.gw.Set(ctx, key, string(data))
	s.writeResult(key, err)
	if err != nil {
		s.logger.Error("persist write failed", "key", key, "error", err)
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Session) writeResult(key string, err error) {
	if s.metrics != nil {
		s.metrics.Write(key, err)
	}
	if err != nil && s.onWriteError != nil {
		s.onWriteError(key, err)
	}
}

func (s *Session) mutationLocked(op string) {
	if s.metrics != nil {
		s.metrics.Mutation(op)
	}
}

func (s *Session) recordItems(lt model.ListType) {
	if s.metrics != nil {
		s.metrics.Items(lt, len(s.state.Lists[lt]))
	}
}

func (s *Session) publishLocked(entity, action, id string) {
	if s.broadcaster != nil {
		s.broadcaster.Publish(Change{Entity: entity, Action: action, ID: id, List: s.active})
	}
}

func (s *Session) notify(level NoticeLevel, title, message string) {
	if s.notifier != nil {
		s.notifier.Notify(Notice{Level: level, Title: title, Message: message})
	}
}

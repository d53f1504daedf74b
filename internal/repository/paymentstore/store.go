package paymentstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mini-shop-be/internal/entity"
	"mini-shop-be/internal/pkg/logger"
)

// ErrNotFound signals an unknown payment id. It is a normal result, not
// an exceptional one; handlers map it to a 404.
var ErrNotFound = errors.New("payment not found")

const (
	createdMessage         = "Your top-up request has been received."
	defaultApprovedMessage = "Your top-up has been approved."
	defaultRejectedMessage = "Your top-up has been rejected."
)

type CreateInput struct {
	PlayerId   string
	CoinAmount float64
	AmountLAK  float64
	SlipURL    string
}

// TransitionResult carries the mutated record plus a flag telling the
// caller the record had already left pending. The audit entry is still
// appended in that case so repeated admin actions stay visible.
type TransitionResult struct {
	Payment        *entity.Payment
	Retransitioned bool
}

// Store owns the canonical payment list. Every mutation runs under one
// mutex as a read-modify-write-persist unit; the in-memory slice is the
// source of truth and the file is a best-effort mirror.
type Store struct {
	mu       sync.Mutex
	payments []*entity.Payment
	filePath string
	lastId   int64
	logger   logger.ILogger
}

type fileLayout struct {
	Payments []*entity.Payment `json:"payments"`
}

func New(filePath string, log logger.ILogger) *Store {
	s := &Store{
		filePath: filePath,
		logger:   log,
	}
	s.load()
	return s
}

// load reads the durable file. Missing or malformed content initializes
// an empty file instead of failing startup.
func (s *Store) load() {
	raw, err := os.ReadFile(s.filePath)
	if err == nil {
		var layout fileLayout
		if jsonErr := json.Unmarshal(raw, &layout); jsonErr == nil {
			s.payments = layout.Payments
			s.normalize()
			return
		}
		s.logger.Warn("PaymentStore", "Malformed payments file, starting empty", map[string]interface{}{"path": s.filePath})
	}

	s.payments = []*entity.Payment{}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		s.logger.Error("PaymentStore", "Failed to create data directory", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := os.WriteFile(s.filePath, mustMarshal(fileLayout{Payments: []*entity.Payment{}}), 0o644); err != nil {
		s.logger.Error("PaymentStore", "Failed to initialize payments file", map[string]interface{}{"error": err.Error()})
	}
}

// normalize guards against hand-edited files: nil notification slices
// become empty ones and the id watermark is rebuilt.
func (s *Store) normalize() {
	if s.payments == nil {
		s.payments = []*entity.Payment{}
	}
	for _, p := range s.payments {
		if p.Notifications == nil {
			p.Notifications = []entity.NotificationEntry{}
		}
		if p.Id > s.lastId {
			s.lastId = p.Id
		}
	}
}

// nextId keeps the time-flavored ids of the legacy data but guarantees
// uniqueness under rapid submission: never at or below the watermark.
func (s *Store) nextId() int64 {
	id := time.Now().UnixMilli()
	if id <= s.lastId {
		id = s.lastId + 1
	}
	s.lastId = id
	return id
}

// persist rewrites the whole file. Failures are logged and swallowed:
// the in-memory state stays authoritative until the next successful write.
func (s *Store) persist() {
	data, err := json.MarshalIndent(fileLayout{Payments: s.payments}, "", "  ")
	if err != nil {
		s.logger.Error("PaymentStore", "Failed to marshal payments", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := os.WriteFile(s.filePath, data, 0o644); err != nil {
		s.logger.Error("PaymentStore", "Failed to save payments file", map[string]interface{}{"error": err.Error(), "path": s.filePath})
	}
}

func (s *Store) Create(input CreateInput) *entity.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	p := &entity.Payment{
		Id:         s.nextId(),
		PlayerId:   input.PlayerId,
		CoinAmount: input.CoinAmount,
		AmountLAK:  input.AmountLAK,
		SlipURL:    input.SlipURL,
		Status:     entity.PaymentStatusPending,
		CreatedAt:  now,
		Notifications: []entity.NotificationEntry{
			{Message: createdMessage, At: now, Type: entity.NotificationTypeCreated},
		},
	}

	s.payments = append(s.payments, p)
	s.persist()
	return p.Clone()
}

func (s *Store) FindById(id int64) (*entity.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findLocked(id)
	if p == nil {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

// Transition moves a record to approved or rejected and appends the
// matching audit entry. A record that already settled is overwritten
// again (last writer wins) but the result flags the re-transition.
func (s *Store) Transition(id int64, status entity.PaymentStatus, message string) (*TransitionResult, error) {
	if status != entity.PaymentStatusApproved && status != entity.PaymentStatusRejected {
		return nil, errors.New("invalid transition status: " + string(status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findLocked(id)
	if p == nil {
		return nil, ErrNotFound
	}

	retransitioned := p.Status != entity.PaymentStatusPending

	now := time.Now()
	p.Status = status
	if status == entity.PaymentStatusApproved {
		p.ApprovedAt = &now
		if message == "" {
			message = defaultApprovedMessage
		}
		p.Notifications = append(p.Notifications, entity.NotificationEntry{Message: message, At: now, Type: entity.NotificationTypeApproved})
	} else {
		p.RejectedAt = &now
		if message == "" {
			message = defaultRejectedMessage
		}
		p.Notifications = append(p.Notifications, entity.NotificationEntry{Message: message, At: now, Type: entity.NotificationTypeRejected})
	}

	s.persist()
	return &TransitionResult{Payment: p.Clone(), Retransitioned: retransitioned}, nil
}

// AppendNotification adds a notify-type entry without touching status.
func (s *Store) AppendNotification(id int64, message string) (*entity.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findLocked(id)
	if p == nil {
		return nil, ErrNotFound
	}

	p.Notifications = append(p.Notifications, entity.NotificationEntry{
		Message: message,
		At:      time.Now(),
		Type:    entity.NotificationTypeNotify,
	})

	s.persist()
	return p.Clone(), nil
}

func (s *Store) List() []*entity.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*entity.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		out = append(out, p.Clone())
	}
	return out
}

// PendingCount is recomputed from the full collection on every call so
// the realtime badge can never drift from the store.
func (s *Store) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, p := range s.payments {
		if p.Status == entity.PaymentStatusPending {
			count++
		}
	}
	return count
}

func (s *Store) findLocked(id int64) *entity.Payment {
	for _, p := range s.payments {
		if p.Id == id {
			return p
		}
	}
	return nil
}

func mustMarshal(v interface{}) []byte {
	data, _ := json.MarshalIndent(v, "", "  ")
	return data
}

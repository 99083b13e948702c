// Package services wires C1-C10 and the persistence/event-bus adapters
// behind the per-room write lock described in spec.md §5.
package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hangawi/coordination-core/internal/dto"
	"github.com/hangawi/coordination-core/internal/eventbus"
	"github.com/hangawi/coordination-core/internal/exchange"
	"github.com/hangawi/coordination-core/internal/models"
	"github.com/hangawi/coordination-core/internal/ports"
	"github.com/hangawi/coordination-core/internal/recompute"
	"github.com/hangawi/coordination-core/internal/repositories"
	"github.com/hangawi/coordination-core/internal/requeststate"
	"github.com/hangawi/coordination-core/internal/scheduler"
	"github.com/hangawi/coordination-core/internal/travel"
)

// CoordinationService is the façade every HTTP handler calls through. It
// owns the per-room write lock (spec.md §5): every mutating operation
// holds the lock for validate -> mutate -> recompute -> persist -> publish.
type CoordinationService struct {
	rooms    *repositories.RoomRepository
	profiles ports.UserProfileProvider
	activity ports.ActivityLogAppender
	bus      *eventbus.Bus
	parser   ports.IntentParser

	recomputer *recompute.Recomputer
	scheduler  *scheduler.Engine
	planner    *exchange.Planner
	requests   *requeststate.Machine

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.RWMutex
}

// New builds a CoordinationService, wiring the travel calculator into the
// recomputer/scheduler/planner the way SPEC_FULL.md §4 describes. parser
// may be nil in deployments that don't offer the NL-parsing endpoint.
func New(rooms *repositories.RoomRepository, profiles ports.UserProfileProvider, activity ports.ActivityLogAppender, bus *eventbus.Bus, calculator travel.Calculator, parser ports.IntentParser) *CoordinationService {
	recomputer := recompute.New(calculator, profiles)
	return &CoordinationService{
		rooms:      rooms,
		profiles:   profiles,
		activity:   activity,
		bus:        bus,
		parser:     parser,
		recomputer: recomputer,
		scheduler:  scheduler.New(profiles, recomputer),
		planner:    exchange.New(profiles, recomputer, activity),
		requests:   requeststate.New(recomputer, activity),
		locks:      make(map[uuid.UUID]*sync.RWMutex),
	}
}

func (s *CoordinationService) lockFor(roomID uuid.UUID) *sync.RWMutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[roomID]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[roomID] = l
	}
	return l
}

// CreateRoom persists a brand-new draft room.
func (s *CoordinationService) CreateRoom(ctx context.Context, name string, ownerID uuid.UUID, settings models.RoomSettings) (*models.RoomDocument, error) {
	doc := &models.RoomDocument{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		Name:              name,
		CurrentTravelMode: models.TravelModeNone,
		ConfirmationState: models.ConfirmationDraft,
		Settings:          settings,
	}
	if err := s.rooms.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetRoom reads a room under a read lock, seeing a consistent snapshot
// (spec.md §5: "a reader never observes a partially recomputed date").
func (s *CoordinationService) GetRoom(ctx context.Context, roomID uuid.UUID) (*models.RoomDocument, error) {
	lock := s.lockFor(roomID)
	lock.RLock()
	defer lock.RUnlock()
	doc, err := s.rooms.Load(ctx, roomID)
	if err != nil {
		return nil, &dto.ErrNotFound{Resource: "room", Message: "방을 찾을 수 없습니다"}
	}
	return doc, nil
}

// RunSchedule invokes C7 to propose a week's assignment, then persists
// and publishes schedule-updated.
func (s *CoordinationService) RunSchedule(ctx context.Context, roomID uuid.UUID, weekStart time.Time, classDurationMin int) (*models.RoomDocument, error) {
	lock := s.lockFor(roomID)
	lock.Lock()
	defer lock.Unlock()

	doc, err := s.rooms.Load(ctx, roomID)
	if err != nil {
		return nil, &dto.ErrNotFound{Resource: "room", Message: "방을 찾을 수 없습니다"}
	}

	order := make([]uuid.UUID, len(doc.Members))
	members := append([]models.Member(nil), doc.Members...)
	sort.SliceStable(members, func(i, j int) bool { return members[i].CarryOverCount > members[j].CarryOverCount })
	for i, m := range members {
		order[i] = m.UserID
	}

	if err := s.scheduler.ProposeWeek(ctx, doc, weekStart, scheduler.Options{ClassDurationMin: classDurationMin, MemberOrder: order}); err != nil {
		return nil, fmt.Errorf("services: run schedule: %w", err)
	}
	if err := s.rooms.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.bus.Publish(eventbus.TopicScheduleUpdated, map[string]any{"roomId": roomID.String()})
	return doc, nil
}

// ConfirmSchedule flips proposed slots to confirmed and locks in the
// room's current travel mode as its confirmed mode (spec.md §3
// "Lifecycle", §9 Q3).
func (s *CoordinationService) ConfirmSchedule(ctx context.Context, roomID uuid.UUID) (*models.RoomDocument, error) {
	lock := s.lockFor(roomID)
	lock.Lock()
	defer lock.Unlock()

	doc, err := s.rooms.Load(ctx, roomID)
	if err != nil {
		return nil, &dto.ErrNotFound{Resource: "room", Message: "방을 찾을 수 없습니다"}
	}

	for i := range doc.Slots {
		doc.Slots[i].Status = models.SlotConfirmed
	}
	now := time.Now()
	doc.ConfirmationState = models.ConfirmationConfirmed
	doc.ConfirmedAt = &now
	doc.ConfirmedTravelMode = doc.CurrentTravelMode

	if err := s.rooms.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.bus.Publish(eventbus.TopicScheduleUpdated, map[string]any{"roomId": roomID.String(), "confirmed": true})
	return doc, nil
}

// ParseExchangeRequest delegates free-form text to the external NL
// parser (spec.md §1 out-of-scope collaborator) and returns the
// resulting Parsed Intent, unvalidated and unapplied. No room lock is
// held: parsing doesn't touch room state.
func (s *CoordinationService) ParseExchangeRequest(ctx context.Context, roomID uuid.UUID, text string, requesterID uuid.UUID) (models.ParsedIntent, error) {
	if s.parser == nil {
		return models.ParsedIntent{}, fmt.Errorf("services: no NL parser configured")
	}
	member, err := s.IsMember(ctx, roomID, requesterID)
	if err != nil {
		return models.ParsedIntent{}, err
	}
	if !member {
		return models.ParsedIntent{}, &dto.ErrNotAuthorized{Message: "이 방의 멤버가 아닙니다"}
	}
	return s.parser.Parse(ctx, text, requesterID)
}

// SmartExchange invokes C8 with a validated Parsed Intent, persists the
// result, and publishes schedule-updated or request-created depending on
// the classified outcome.
func (s *CoordinationService) SmartExchange(ctx context.Context, roomID uuid.UUID, intent models.ParsedIntent) (exchange.Outcome, error) {
	lock := s.lockFor(roomID)
	lock.Lock()
	defer lock.Unlock()

	doc, err := s.rooms.Load(ctx, roomID)
	if err != nil {
		return exchange.Outcome{}, &dto.ErrNotFound{Resource: "room", Message: "방을 찾을 수 없습니다"}
	}

	if !isMember(doc, intent.RequesterID) {
		return exchange.Outcome{}, &dto.ErrNotAuthorized{Message: "이 방의 멤버가 아닙니다"}
	}

	outcome, err := s.planner.Apply(ctx, doc, intent, time.Now())
	if err != nil {
		return exchange.Outcome{}, err
	}

	if err := s.rooms.Save(ctx, doc); err != nil {
		return exchange.Outcome{}, err
	}

	if outcome.CreatedRequest != nil {
		s.bus.Publish(eventbus.TopicRequestCreated, map[string]any{"roomId": roomID.String(), "requestId": outcome.CreatedRequest.ID.String()})
	} else {
		s.bus.Publish(eventbus.TopicScheduleUpdated, map[string]any{"roomId": roomID.String()})
	}
	return outcome, nil
}

// ApproveRequest, RejectRequest, CancelRequest invoke C9 and publish
// request-resolved.
func (s *CoordinationService) ApproveRequest(ctx context.Context, roomID, requestID, approverID uuid.UUID) (requeststate.Outcome, error) {
	return s.resolveRequest(ctx, roomID, func(doc *models.RoomDocument) (requeststate.Outcome, error) {
		return s.requests.Approve(ctx, doc, requestID, approverID, time.Now())
	})
}

func (s *CoordinationService) RejectRequest(ctx context.Context, roomID, requestID, approverID uuid.UUID) (requeststate.Outcome, error) {
	return s.resolveRequest(ctx, roomID, func(doc *models.RoomDocument) (requeststate.Outcome, error) {
		return s.requests.Reject(ctx, doc, requestID, approverID, time.Now())
	})
}

func (s *CoordinationService) CancelRequest(ctx context.Context, roomID, requestID, requesterID uuid.UUID) (requeststate.Outcome, error) {
	return s.resolveRequest(ctx, roomID, func(doc *models.RoomDocument) (requeststate.Outcome, error) {
		return s.requests.Cancel(ctx, doc, requestID, requesterID, time.Now())
	})
}

func (s *CoordinationService) resolveRequest(ctx context.Context, roomID uuid.UUID, fn func(*models.RoomDocument) (requeststate.Outcome, error)) (requeststate.Outcome, error) {
	lock := s.lockFor(roomID)
	lock.Lock()
	defer lock.Unlock()

	doc, err := s.rooms.Load(ctx, roomID)
	if err != nil {
		return requeststate.Outcome{}, &dto.ErrNotFound{Resource: "room", Message: "방을 찾을 수 없습니다"}
	}

	outcome, err := fn(doc)
	// Even a stale-rejection mutates the Request list, so persist
	// regardless of whether err is nil or ErrStaleRequest.
	if saveErr := s.rooms.Save(ctx, doc); saveErr != nil && err == nil {
		return requeststate.Outcome{}, saveErr
	}
	if err != nil {
		return outcome, err
	}
	s.bus.Publish(eventbus.TopicRequestResolved, map[string]any{"roomId": roomID.String(), "outcome": string(outcome.Status)})
	return outcome, nil
}

// IsMember reports whether userID is the room's owner or a member, for
// middlewares.RequireRoomMember.
func (s *CoordinationService) IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	doc, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	return isMember(doc, userID), nil
}

func isMember(doc *models.RoomDocument, userID uuid.UUID) bool {
	if doc.OwnerID == userID {
		return true
	}
	for _, m := range doc.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

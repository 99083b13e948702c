package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hangawi/coordination-core/internal/models"
)

// RoomRepository loads and saves the whole-room JSONB document, the Go
// analogue of "one document per room with embedded arrays" (spec.md
// §6.3), grounded on the teacher's datatypes.JSON columns for
// Space.Equipment/Reservation.RecurrencePattern.
type RoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository builds a RoomRepository.
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create persists a brand-new room.
func (r *RoomRepository) Create(ctx context.Context, doc *models.RoomDocument) error {
	row, err := toRow(doc)
	if err != nil {
		return fmt.Errorf("repositories: encode room: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("repositories: create room: %w", err)
	}
	doc.ID = row.ID
	doc.CreatedAt = row.CreatedAt
	doc.UpdatedAt = row.UpdatedAt
	return nil
}

// Load reads a room by id and decodes its JSONB columns into a
// RoomDocument for the engine packages to operate on.
func (r *RoomRepository) Load(ctx context.Context, id uuid.UUID) (*models.RoomDocument, error) {
	var row models.Room
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("repositories: load room %s: %w", id, err)
	}
	return fromRow(&row)
}

// Save writes doc back whole — the entire document is re-encoded and
// rewritten, matching the "load whole, rewrite whole" persistence model
// described in SPEC_FULL.md §3.
func (r *RoomRepository) Save(ctx context.Context, doc *models.RoomDocument) error {
	row, err := toRow(doc)
	if err != nil {
		return fmt.Errorf("repositories: encode room: %w", err)
	}
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return fmt.Errorf("repositories: save room %s: %w", doc.ID, err)
	}
	doc.UpdatedAt = row.UpdatedAt
	return nil
}

func toRow(doc *models.RoomDocument) (*models.Room, error) {
	members, err := json.Marshal(doc.Members)
	if err != nil {
		return nil, err
	}
	settings, err := json.Marshal(doc.Settings)
	if err != nil {
		return nil, err
	}
	slots, err := json.Marshal(doc.Slots)
	if err != nil {
		return nil, err
	}
	travelSlots, err := json.Marshal(doc.TravelSlots)
	if err != nil {
		return nil, err
	}
	requests, err := json.Marshal(doc.Requests)
	if err != nil {
		return nil, err
	}

	return &models.Room{
		ID:                  doc.ID,
		OwnerID:             doc.OwnerID,
		Name:                doc.Name,
		CurrentTravelMode:   doc.CurrentTravelMode,
		ConfirmedTravelMode: doc.ConfirmedTravelMode,
		ConfirmationState:   doc.ConfirmationState,
		ConfirmedAt:         doc.ConfirmedAt,
		Members:             datatypes.JSON(members),
		Settings:            datatypes.JSON(settings),
		Slots:               datatypes.JSON(slots),
		TravelSlots:         datatypes.JSON(travelSlots),
		Requests:            datatypes.JSON(requests),
		CreatedAt:           doc.CreatedAt,
		UpdatedAt:           doc.UpdatedAt,
	}, nil
}

func fromRow(row *models.Room) (*models.RoomDocument, error) {
	doc := &models.RoomDocument{
		ID:                  row.ID,
		OwnerID:             row.OwnerID,
		Name:                row.Name,
		CurrentTravelMode:   row.CurrentTravelMode,
		ConfirmedTravelMode: row.ConfirmedTravelMode,
		ConfirmationState:   row.ConfirmationState,
		ConfirmedAt:         row.ConfirmedAt,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
	if len(row.Members) > 0 {
		if err := json.Unmarshal(row.Members, &doc.Members); err != nil {
			return nil, fmt.Errorf("repositories: decode members: %w", err)
		}
	}
	if len(row.Settings) > 0 {
		if err := json.Unmarshal(row.Settings, &doc.Settings); err != nil {
			return nil, fmt.Errorf("repositories: decode settings: %w", err)
		}
	}
	if len(row.Slots) > 0 {
		if err := json.Unmarshal(row.Slots, &doc.Slots); err != nil {
			return nil, fmt.Errorf("repositories: decode slots: %w", err)
		}
	}
	if len(row.TravelSlots) > 0 {
		if err := json.Unmarshal(row.TravelSlots, &doc.TravelSlots); err != nil {
			return nil, fmt.Errorf("repositories: decode travel slots: %w", err)
		}
	}
	if len(row.Requests) > 0 {
		if err := json.Unmarshal(row.Requests, &doc.Requests); err != nil {
			return nil, fmt.Errorf("repositories: decode requests: %w", err)
		}
	}
	return doc, nil
}

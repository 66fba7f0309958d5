// Package mongo implements the MongoDB reporting archive of realized
// ledger entries. The archive is eventually consistent with the
// authoritative PostgreSQL ledger and exists to serve listings cheaply.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/collective-funds-ledger/internal/domain/ledger"
)

const (
	// ArchiveCollectionName is the name of the entry archive collection
	ArchiveCollectionName = "ledger_entries"
)

// LedgerArchiveRepository implements the ledger.ArchiveRepository
// interface for MongoDB
type LedgerArchiveRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewLedgerArchiveRepository creates a new MongoDB archive repository
func NewLedgerArchiveRepository(logger *slog.Logger, db *mongo.Database) ledger.ArchiveRepository {
	return &LedgerArchiveRepository{
		db:     db,
		logger: logger,
	}
}

// Archive upserts an entry keyed by its ID. Events can be redelivered,
// so replaying the same entry must leave the archive unchanged.
func (r *LedgerArchiveRepository) Archive(ctx context.Context, entry *ledger.Entry) error {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"id": entry.ID}
	update := bson.M{"$set": entry}
	opts := options.Update().SetUpsert(true)

	if _, err := collection.UpdateOne(ctx, filter, update, opts); err != nil {
		r.logger.Error("Failed to archive ledger entry",
			"id", entry.ID.String(),
			"order_id", entry.OrderID.String(),
			"error", err)
		return fmt.Errorf("failed to archive ledger entry: %w", err)
	}

	return nil
}

// GetByID retrieves an archived entry by its ID.
// Returns ErrEntryNotFound if the entry has not been archived yet.
func (r *LedgerArchiveRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"id": id}
	var entry ledger.Entry
	err := collection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledger.ErrEntryNotFound{EntryID: id}
		}
		r.logger.Error("Failed to get archived ledger entry",
			"id", id.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get archived ledger entry: %w", err)
	}

	return &entry, nil
}

// GetByOrderID retrieves the archived entries realized for an order
func (r *LedgerArchiveRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*ledger.Entry, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"order_id": orderID}
	opts := options.Find().SetSort(bson.M{"type": 1})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get archived entries by order",
			"order_id", orderID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get archived entries by order: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*ledger.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode archived entries",
			"order_id", orderID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode archived entries: %w", err)
	}

	return entries, nil
}

// GetByCollectiveID retrieves paginated archived entries for a
// collective, newest first
func (r *LedgerArchiveRepository) GetByCollectiveID(ctx context.Context, collectiveID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"collective_id": collectiveID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get archived entries",
			"collective_id", collectiveID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get archived entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*ledger.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode archived entries",
			"collective_id", collectiveID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode archived entries: %w", err)
	}

	return entries, nil
}

// CountByCollectiveID counts a collective's archived entries for
// pagination
func (r *LedgerArchiveRepository) CountByCollectiveID(ctx context.Context, collectiveID uuid.UUID) (int64, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"collective_id": collectiveID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count archived entries",
			"collective_id", collectiveID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count archived entries: %w", err)
	}

	return count, nil
}

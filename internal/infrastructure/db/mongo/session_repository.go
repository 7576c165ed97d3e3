package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yogastudio/booking/internal/core/domain"
)

const (
	collectionSessions = "sessions"
	collectionCounters = "counters"
)

type SessionRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{
		col:      db.Collection(collectionSessions),
		counters: db.Collection(collectionCounters),
	}
}

type sessionDocument struct {
	ID          int64     `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Date        time.Time `bson:"date"`
	TeacherID   int64     `bson:"teacher_id"`
	Users       []int64   `bson:"users"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toSessionDocument(s *domain.Session) sessionDocument {
	return sessionDocument{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Date:        s.Date.UTC(),
		TeacherID:   s.TeacherID,
		Users:       s.Users.IDs(),
		CreatedAt:   s.CreatedAt.UTC(),
		UpdatedAt:   s.UpdatedAt.UTC(),
	}
}

func (d sessionDocument) toDomain() *domain.Session {
	return &domain.Session{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Date:        d.Date.UTC(),
		TeacherID:   d.TeacherID,
		Users:       domain.NewRoster(d.Users...),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// Create draws the next id from the counters collection and inserts the session.
func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}

	doc := toSessionDocument(s)
	doc.ID = id
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id int64) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc sessionDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns all sessions sorted by _id, which follows insertion order.
func (r *SessionRepository) List(ctx context.Context) ([]*domain.Session, error) {
	return r.find(ctx, bson.M{})
}

// ListByParticipant matches the users array, which is indexed.
func (r *SessionRepository) ListByParticipant(ctx context.Context, userID int64) ([]*domain.Session, error) {
	return r.find(ctx, bson.M{"users": userID})
}

func (r *SessionRepository) find(ctx context.Context, filter bson.M) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	var docs []sessionDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}

	out := make([]*domain.Session, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// Replace overwrites the whole document in one ReplaceOne call; MongoDB
// applies single-document writes atomically.
func (r *SessionRepository) Replace(ctx context.Context, s *domain.Session) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": s.ID}, toSessionDocument(s))
	if err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

type counterDocument struct {
	Seq int64 `bson:"seq"`
}

func (r *SessionRepository) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c counterDocument
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": collectionSessions},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("next session id: %w", err)
	}
	return c.Seq, nil
}

// EnsureIndexes creates necessary indexes on the sessions collection.
func (r *SessionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "teacher_id", Value: 1}}},
		{Keys: bson.D{{Key: "users", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

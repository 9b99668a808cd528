package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/peoplehq/users-api/internal/core/domain"
)

const usersCollection = "users"

// UserRepository persists user aggregates as single documents, so an
// aggregate and its owned Address/Employments are always written and
// removed atomically. The unique index on email is the authoritative
// uniqueness guarantee; duplicate-key rejections surface as ErrEmailTaken.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type addressDoc struct {
	Street   string `bson:"street"`
	City     string `bson:"city"`
	PostCode *int   `bson:"post_code,omitempty"`
}

type employmentDoc struct {
	Company            string     `bson:"company"`
	MonthsOfExperience *uint      `bson:"months_of_experience,omitempty"`
	Salary             *uint      `bson:"salary,omitempty"`
	StartDate          *time.Time `bson:"start_date,omitempty"`
	EndDate            *time.Time `bson:"end_date,omitempty"`
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	FirstName    string             `bson:"first_name"`
	LastName     string             `bson:"last_name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash,omitempty"`
	PasswordSalt string             `bson:"password_salt,omitempty"`
	Address      *addressDoc        `bson:"address,omitempty"`
	Employments  []employmentDoc    `bson:"employments"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

// Create inserts a new aggregate. The employment date invariant is
// re-checked here as a persistence-time guard, independent of whatever
// validation ran upstream.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := domain.CheckEmploymentDates(user.Employments); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toDoc(user)
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return fromDoc(doc), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return fromDoc(doc), nil
}

// FindByEmail matches exactly; email comparison is case-sensitive.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return fromDoc(doc), nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, *fromDoc(d))
	}
	return users, nil
}

// EmailInUse reports whether another document holds the email. excludeID
// exempts the aggregate's own document during updates; invalid ids are
// treated as "exclude nothing".
func (r *UserRepository) EmailInUse(ctx context.Context, email, excludeID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"email": email}
	if excludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}

	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("count users by email: %w", err)
	}
	return n > 0, nil
}

// Update replaces the stored document with the merged aggregate.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := domain.CheckEmploymentDates(user.Employments); err != nil {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toDoc(user)
	doc.ID = oid

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}
	return fromDoc(doc), nil
}

// Delete removes the aggregate document; owned Address and Employments
// live inside it and go with it.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index. It closes the
// check-then-insert race: when two concurrent creates pass the fast-path
// existence check, the index rejects the second insert.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func toDoc(u *domain.User) userDoc {
	doc := userDoc{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Employments: make([]employmentDoc, 0, len(u.Employments)),
		CreatedAt:   u.CreatedAt.Unix(),
		UpdatedAt:   u.UpdatedAt.Unix(),
	}
	if u.Credential != nil {
		doc.PasswordHash = u.Credential.PasswordHash
		doc.PasswordSalt = u.Credential.PasswordSalt
	}
	if u.Address != nil {
		doc.Address = &addressDoc{
			Street:   u.Address.Street,
			City:     u.Address.City,
			PostCode: u.Address.PostCode,
		}
	}
	for _, e := range u.Employments {
		doc.Employments = append(doc.Employments, employmentDoc{
			Company:            e.Company,
			MonthsOfExperience: e.MonthsOfExperience,
			Salary:             e.Salary,
			StartDate:          utcPtr(e.StartDate),
			EndDate:            utcPtr(e.EndDate),
		})
	}
	return doc
}

func fromDoc(d userDoc) *domain.User {
	u := &domain.User{
		ID:          d.ID.Hex(),
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Email:       d.Email,
		Employments: make([]domain.Employment, 0, len(d.Employments)),
		CreatedAt:   unixToTime(d.CreatedAt),
		UpdatedAt:   unixToTime(d.UpdatedAt),
	}
	if d.PasswordHash != "" || d.PasswordSalt != "" {
		u.Credential = &domain.Credential{
			PasswordHash: d.PasswordHash,
			PasswordSalt: d.PasswordSalt,
		}
	}
	if d.Address != nil {
		u.Address = &domain.Address{
			Street:   d.Address.Street,
			City:     d.Address.City,
			PostCode: d.Address.PostCode,
		}
	}
	for _, e := range d.Employments {
		u.Employments = append(u.Employments, domain.Employment{
			Company:            e.Company,
			MonthsOfExperience: e.MonthsOfExperience,
			Salary:             e.Salary,
			StartDate:          utcPtr(e.StartDate),
			EndDate:            utcPtr(e.EndDate),
		})
	}
	return u
}

// utcPtr normalizes stored instants to UTC; the driver decodes BSON dates
// in local time.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

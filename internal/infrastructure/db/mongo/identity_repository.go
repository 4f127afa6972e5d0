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

	"github.com/elikia/membership-auth/internal/core/domain"
)

const (
	collectionAdmins  = "admins"
	collectionMembers = "members"
)

// IdentityRepository implements ports.IdentityRepository and
// ports.AccountRepository over the admins and members collections.
type IdentityRepository struct {
	admins  *mongo.Collection
	members *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{
		admins:  db.Collection(collectionAdmins),
		members: db.Collection(collectionMembers),
	}
}

type accountDoc struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	FirstName           string             `bson:"first_name"`
	LastName            string             `bson:"last_name"`
	Email               string             `bson:"email"`
	PasswordHash        string             `bson:"password_hash"`
	FailedLoginAttempts int                `bson:"failed_login_attempts"`
	LockUntil           *time.Time         `bson:"lock_until"`
	Version             int64              `bson:"version"`
	CreatedAt           time.Time          `bson:"created_at"`
}

type memberDoc struct {
	Account  accountDoc `bson:",inline"`
	Status   string     `bson:"status"`
	RoleName string     `bson:"role_name"`
}

func toAccountDoc(a domain.Account) accountDoc {
	return accountDoc{
		FirstName:           a.FirstName,
		LastName:            a.LastName,
		Email:               a.Email,
		PasswordHash:        a.PasswordHash,
		FailedLoginAttempts: a.Lockout.FailedLoginAttempts,
		LockUntil:           a.Lockout.LockUntil,
		Version:             a.Version,
		CreatedAt:           a.CreatedAt.UTC(),
	}
}

func (d accountDoc) toDomain() domain.Account {
	var until *time.Time
	if d.LockUntil != nil {
		t := d.LockUntil.UTC()
		until = &t
	}
	return domain.Account{
		ID:           d.ID.Hex(),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Lockout:      domain.Lockout{FailedLoginAttempts: d.FailedLoginAttempts, LockUntil: until},
		CreatedAt:    d.CreatedAt.UTC(),
		Version:      d.Version,
	}
}

func (d memberDoc) toDomain() *domain.Member {
	return &domain.Member{
		Account:  d.Account.toDomain(),
		Status:   domain.MemberStatus(d.Status),
		RoleName: d.RoleName,
	}
}

// FindAdminByEmail looks up an admin by normalized email.
func (r *IdentityRepository) FindAdminByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	if err := r.admins.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &domain.Admin{Account: doc.toDomain()}, nil
}

// FindMemberByEmail looks up a member by normalized email.
func (r *IdentityRepository) FindMemberByEmail(ctx context.Context, email string) (*domain.Member, error) {
	return r.findMember(ctx, bson.M{"email": email})
}

// FindMemberByID looks up a member by its hex object id.
func (r *IdentityRepository) FindMemberByID(ctx context.Context, id string) (*domain.Member, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrIdentityNotFound
	}
	return r.findMember(ctx, bson.M{"_id": oid})
}

func (r *IdentityRepository) findMember(ctx context.Context, filter bson.M) (*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc memberDoc
	if err := r.members.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find member: %w", err)
	}
	return doc.toDomain(), nil
}

// SaveLockout writes the lockout fields only if the stored version still
// matches the one the identity was read at, then bumps the version.
func (r *IdentityRepository) SaveLockout(ctx context.Context, identity domain.Identity, lockout domain.Lockout) error {
	acct := identity.Base()
	oid, err := primitive.ObjectIDFromHex(acct.ID)
	if err != nil {
		return domain.ErrIdentityNotFound
	}

	coll := r.members
	if identity.Role() == domain.RoleAdmin {
		coll = r.admins
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "version": acct.Version}
	update := bson.M{
		"$set": bson.M{
			"failed_login_attempts": lockout.FailedLoginAttempts,
			"lock_until":            lockout.LockUntil,
		},
		"$inc": bson.M{"version": 1},
	}

	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update lockout: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}

// CreateAdmin inserts a new admin document.
func (r *IdentityRepository) CreateAdmin(ctx context.Context, admin *domain.Admin) (*domain.Admin, error) {
	doc := toAccountDoc(admin.Account)
	id, err := r.insert(ctx, r.admins, doc)
	if err != nil {
		return nil, err
	}

	created := *admin
	created.ID = id
	return &created, nil
}

// CreateMember inserts a new member document.
func (r *IdentityRepository) CreateMember(ctx context.Context, member *domain.Member) (*domain.Member, error) {
	doc := memberDoc{
		Account:  toAccountDoc(member.Account),
		Status:   string(member.Status),
		RoleName: member.RoleName,
	}
	id, err := r.insert(ctx, r.members, doc)
	if err != nil {
		return nil, err
	}

	created := *member
	created.ID = id
	return &created, nil
}

func (r *IdentityRepository) insert(ctx context.Context, coll *mongo.Collection, doc interface{}) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", domain.ErrEmailTaken
		}
		return "", fmt.Errorf("insert %s: %w", coll.Name(), err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert %s: unexpected id type %T", coll.Name(), res.InsertedID)
	}
	return oid.Hex(), nil
}

// UpdateMemberProfile sets status and role reference; empty values are left unchanged.
func (r *IdentityRepository) UpdateMemberProfile(ctx context.Context, id string, status domain.MemberStatus, roleName string) (*domain.Member, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrIdentityNotFound
	}

	set := bson.M{}
	if status != "" {
		set["status"] = string(status)
	}
	if roleName != "" {
		set["role_name"] = roleName
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc memberDoc
	err = r.members.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("update member: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the unique email index on both identity collections.
func (r *IdentityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	email := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	for _, coll := range []*mongo.Collection{r.admins, r.members} {
		if _, err := coll.Indexes().CreateOne(ctx, email); err != nil {
			return fmt.Errorf("index %s.email: %w", coll.Name(), err)
		}
	}

	status := mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}}}
	if _, err := r.members.Indexes().CreateOne(ctx, status); err != nil {
		return fmt.Errorf("index members.status: %w", err)
	}
	return nil
}

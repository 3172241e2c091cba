package data_access

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Matheus-Salgado02/cinelist/models"
)

type UserRepository struct {
	db         *MongoDB
	collection *mongo.Collection
}

func NewUserRepository(db *MongoDB) *UserRepository {
	return &UserRepository{
		db:         db,
		collection: db.Collection(usersCollection),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, user)
	return mapWriteError(err)
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	user.Normalize()
	return &user, nil
}

// UpdateProfile applies a field-level $set. Identity fields set to an empty
// string are unset instead, so they stay out of the sparse indexes.
func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, p *models.ProfileUpdate) (*models.User, error) {
	set := bson.M{}
	unset := bson.M{}
	identity := func(field string, v *string) {
		if v == nil {
			return
		}
		if *v == "" {
			unset[field] = ""
			return
		}
		set[field] = *v
	}
	identity("username", p.Username)
	identity("email", p.Email)
	if p.Name != nil {
		if *p.Name == "" {
			unset["name"] = ""
		} else {
			set["name"] = *p.Name
		}
	}
	if p.Bio != nil {
		set["bio"] = *p.Bio
	}
	if p.FavoriteGenres != nil {
		set["favoriteGenres"] = p.FavoriteGenres
	}
	if p.Stats != nil {
		set["stats"] = p.Stats
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		return r.FindByID(ctx, id)
	}
	return r.findOneAndUpdate(ctx, id, update)
}

// SetWatchlist overwrites the stored watchlist; concurrent writers resolve
// last-write-wins.
func (r *UserRepository) SetWatchlist(ctx context.Context, id primitive.ObjectID, watchlist []models.MovieID) (*models.User, error) {
	if watchlist == nil {
		watchlist = []models.MovieID{}
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": bson.M{"watchlist": watchlist}})
}

func (r *UserRepository) SetReviews(ctx context.Context, id primitive.ObjectID, reviews []models.Review) (*models.User, error) {
	if reviews == nil {
		reviews = []models.Review{}
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": bson.M{"reviews": reviews}})
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, mapWriteError(err)
	}
	user.Normalize()
	return &user, nil
}

// FindByReviewedMovie returns users holding at least one review for movieID.
// Legacy documents may carry the id as a string, so both forms are matched.
func (r *UserRepository) FindByReviewedMovie(ctx context.Context, movieID models.MovieID) ([]*models.User, error) {
	filter := bson.M{"reviews.movieId": bson.M{"$in": bson.A{int64(movieID), movieID.String()}}}
	opts := options.Find().SetProjection(bson.M{"name": 1, "username": 1, "reviews": 1})
	return r.find(ctx, filter, opts)
}

func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	opts := options.Find().SetProjection(bson.M{"username": 1, "createdAt": 1})
	return r.find(ctx, bson.M{}, opts)
}

func (r *UserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.User, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		u.Normalize()
	}
	return users, nil
}

// IdentityFixReport summarizes a FixIdentities run.
type IdentityFixReport struct {
	UsernamesUnset int64
	EmailsUnset    int64
}

// FixIdentities unsets username/email fields stored as explicit nulls, which
// collide inside sparse unique indexes, then recreates both indexes.
func (r *UserRepository) FixIdentities(ctx context.Context) (IdentityFixReport, error) {
	var report IdentityFixReport

	res, err := r.collection.UpdateMany(ctx,
		bson.M{"username": bson.M{"$type": "null"}},
		bson.M{"$unset": bson.M{"username": ""}})
	if err != nil {
		return report, err
	}
	report.UsernamesUnset = res.ModifiedCount

	res, err = r.collection.UpdateMany(ctx,
		bson.M{"email": bson.M{"$type": "null"}},
		bson.M{"$unset": bson.M{"email": ""}})
	if err != nil {
		return report, err
	}
	report.EmailsUnset = res.ModifiedCount

	for _, name := range []string{"username_1", "email_1"} {
		if _, err := r.collection.Indexes().DropOne(ctx, name); err != nil && !isIndexNotFound(err) {
			return report, err
		}
	}
	return report, r.db.EnsureIndexes(ctx)
}

func isIndexNotFound(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == 27 || cmdErr.Name == "IndexNotFound"
	}
	return false
}

// mapWriteError turns E11000 into a DuplicateKeyError naming the identity field.
func mapWriteError(err error) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}
	msg := err.Error()
	for _, field := range []string{"username", "email"} {
		if strings.Contains(msg, field) {
			return &DuplicateKeyError{Field: field}
		}
	}
	return &DuplicateKeyError{Field: "field"}
}

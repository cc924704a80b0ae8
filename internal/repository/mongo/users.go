package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hirehub-dev/hirehub/backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDocument struct {
	ID                 string      `bson:"_id"`
	Name               string      `bson:"name"`
	Email              string      `bson:"email"`
	PasswordHash       string      `bson:"password_hash"`
	Role               domain.Role `bson:"role"`
	Skills             []string    `bson:"skills"`
	Education          string      `bson:"education"`
	ResumeURL          string      `bson:"resume_url"`
	CompanyName        string      `bson:"company_name"`
	CompanyDescription string      `bson:"company_description"`
	IsBlocked          bool        `bson:"is_blocked"`
	CreatedAt          time.Time   `bson:"created_at"`
	UpdatedAt          time.Time   `bson:"updated_at"`
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:                 d.ID,
		Name:               d.Name,
		Email:              d.Email,
		PasswordHash:       d.PasswordHash,
		Role:               d.Role,
		Skills:             nonNil(d.Skills),
		Education:          d.Education,
		ResumeURL:          d.ResumeURL,
		CompanyName:        d.CompanyName,
		CompanyDescription: d.CompanyDescription,
		IsBlocked:          d.IsBlocked,
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
	}
}

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	doc := &userDocument{
		ID:                 uuid.NewString(),
		Name:               user.Name,
		Email:              user.Email,
		PasswordHash:       user.PasswordHash,
		Role:               user.Role,
		Skills:             nonNil(user.Skills),
		Education:          user.Education,
		ResumeURL:          user.ResumeURL,
		CompanyName:        user.CompanyName,
		CompanyDescription: user.CompanyDescription,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}

	*user = *doc.toDomain()
	return nil
}

func (r *Repository) findUser(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc userDocument
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toDomain(), nil
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findUser(ctx, bson.M{"_id": id})
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findUser(ctx, bson.M{"email": email})
}

func (r *Repository) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toDomain())
	}
	return users, nil
}

// UpdateProfile runs as an update pipeline so the role specific fields are
// guarded by the stored role. Values are wrapped in $literal so user input is
// never read as an expression.
func (r *Repository) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	forRole := func(field string, role domain.Role, v any) bson.E {
		return bson.E{Key: field, Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{"$role", role}}},
			bson.D{{Key: "$literal", Value: v}},
			"$" + field,
		}}}}
	}

	set := bson.D{{Key: "updated_at", Value: time.Now().UTC()}}
	if update.Name != nil {
		set = append(set, bson.E{Key: "name", Value: bson.D{{Key: "$literal", Value: *update.Name}}})
	}
	if update.Skills != nil {
		set = append(set, forRole("skills", domain.RoleSeeker, nonNil(*update.Skills)))
	}
	if update.Education != nil {
		set = append(set, forRole("education", domain.RoleSeeker, *update.Education))
	}
	if update.CompanyName != nil {
		set = append(set, forRole("company_name", domain.RoleEmployer, *update.CompanyName))
	}
	if update.CompanyDescription != nil {
		set = append(set, forRole("company_description", domain.RoleEmployer, *update.CompanyDescription))
	}

	var doc userDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	pipeline := mongo.Pipeline{{{Key: "$set", Value: set}}}
	if err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toDomain(), nil
}

func (r *Repository) SetPasswordHash(ctx context.Context, id string, passwordHash string) error {
	return r.setUserField(ctx, id, "password_hash", passwordHash)
}

func (r *Repository) SetResumeURL(ctx context.Context, id string, resumeURL string) error {
	return r.setUserField(ctx, id, "resume_url", resumeURL)
}

func (r *Repository) setUserField(ctx context.Context, id string, field string, value any) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{field: value, "updated_at": time.Now().UTC()}}
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ToggleUserBlocked uses an update pipeline so the flip happens server side.
func (r *Repository) ToggleUserBlocked(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "is_blocked", Value: bson.D{{Key: "$not", Value: bson.A{"$is_blocked"}}}},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
	}

	var doc userDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toDomain(), nil
}

// DeleteUser removes the user, then their jobs and every application that
// referenced the user or one of those jobs.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}

	jobIDs, err := r.jobIDsOf(ctx, id)
	if err != nil {
		return err
	}

	filter := bson.M{"$or": bson.A{
		bson.M{"applicant_id": id},
		bson.M{"job_id": bson.M{"$in": jobIDs}},
	}}
	if _, err := r.applications.DeleteMany(ctx, filter); err != nil {
		return err
	}

	_, err = r.jobs.DeleteMany(ctx, bson.M{"employer_id": id})
	return err
}

func (r *Repository) GetUserStats(ctx context.Context) (*domain.UserStats, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$role"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "blocked", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{"$is_blocked", 1, 0}},
			}}}},
		}}},
	}

	cursor, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var groups []struct {
		Role    domain.Role `bson:"_id"`
		Count   int64       `bson:"count"`
		Blocked int64       `bson:"blocked"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}

	stats := &domain.UserStats{}
	for _, g := range groups {
		stats.TotalUsers += g.Count
		stats.Blocked += g.Blocked
		switch g.Role {
		case domain.RoleSeeker:
			stats.Seekers = g.Count
		case domain.RoleEmployer:
			stats.Employers = g.Count
		case domain.RoleAdmin:
			stats.Admins = g.Count
		}
	}
	return stats, nil
}

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

type applicationDocument struct {
	ID          string                   `bson:"_id"`
	JobID       string                   `bson:"job_id"`
	ApplicantID string                   `bson:"applicant_id"`
	Status      domain.ApplicationStatus `bson:"status"`
	CreatedAt   time.Time                `bson:"created_at"`
	UpdatedAt   time.Time                `bson:"updated_at"`
}

func (d *applicationDocument) toDomain() *domain.Application {
	return &domain.Application{
		ID:          d.ID,
		JobID:       d.JobID,
		ApplicantID: d.ApplicantID,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// CreateApplication relies on the uniq_job_applicant index, so concurrent
// duplicates end with exactly one document.
func (r *Repository) CreateApplication(ctx context.Context, app *domain.Application) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	for _, ref := range []struct {
		coll *mongo.Collection
		id   string
	}{{r.jobs, app.JobID}, {r.users, app.ApplicantID}} {
		ok, err := r.exists(ctx, ref.coll, ref.id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
	}

	status := app.Status
	if status == "" {
		status = domain.ApplicationStatusApplied
	}

	now := time.Now().UTC()
	doc := &applicationDocument{
		ID:          uuid.NewString(),
		JobID:       app.JobID,
		ApplicantID: app.ApplicantID,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.applications.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyApplied
		}
		return err
	}

	*app = *doc.toDomain()
	return nil
}

func (r *Repository) HasApplied(ctx context.Context, jobID, applicantID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	n, err := r.applications.CountDocuments(ctx, bson.M{"job_id": jobID, "applicant_id": applicantID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repository) GetApplicationByID(ctx context.Context, id string) (*domain.Application, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc applicationDocument
	if err := r.applications.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toDomain(), nil
}

func (r *Repository) findApplications(ctx context.Context, filter bson.M) ([]*domain.Application, error) {
	cursor, err := r.applications.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}

	var docs []applicationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	apps := make([]*domain.Application, 0, len(docs))
	for i := range docs {
		apps = append(apps, docs[i].toDomain())
	}
	return apps, nil
}

func (r *Repository) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]*domain.Application, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	apps, err := r.findApplications(ctx, bson.M{"applicant_id": applicantID})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.JobID)
	}
	jobs, err := r.findJobs(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Job, len(jobs))
	for _, job := range jobs {
		byID[job.ID] = job
	}
	for _, app := range apps {
		app.Job = byID[app.JobID]
	}
	return apps, nil
}

func (r *Repository) ListApplicationsByJob(ctx context.Context, jobID string) ([]*domain.Application, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	apps, err := r.findApplications(ctx, bson.M{"job_id": jobID})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.ApplicantID)
	}
	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	applicants := make(map[string]*domain.ApplicantSummary, len(docs))
	for _, d := range docs {
		applicants[d.ID] = &domain.ApplicantSummary{
			ID:        d.ID,
			Name:      d.Name,
			Email:     d.Email,
			Skills:    nonNil(d.Skills),
			Education: d.Education,
			ResumeURL: d.ResumeURL,
		}
	}
	for _, app := range apps {
		app.Applicant = applicants[app.ApplicantID]
	}
	return apps, nil
}

func (r *Repository) UpdateApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus) (*domain.Application, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}}

	var doc applicationDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.applications.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toDomain(), nil
}

func (r *Repository) CountApplications(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.applications.CountDocuments(ctx, bson.D{})
}

func (r *Repository) GetApplicationStatsByEmployer(ctx context.Context, employerID string) (*domain.ApplicationStats, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	jobIDs, err := r.jobIDsOf(ctx, employerID)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"job_id": bson.M{"$in": jobIDs}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.applications.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var groups []struct {
		Status domain.ApplicationStatus `bson:"_id"`
		Count  int64                    `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}

	stats := &domain.ApplicationStats{}
	for _, g := range groups {
		stats.Total += g.Count
		switch g.Status {
		case domain.ApplicationStatusApplied:
			stats.Applied = g.Count
		case domain.ApplicationStatusShortlisted:
			stats.Shortlisted = g.Count
		case domain.ApplicationStatusRejected:
			stats.Rejected = g.Count
		}
	}
	return stats, nil
}

package mongo

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/hirehub-dev/hirehub/backend/internal/domain"
	"github.com/hirehub-dev/hirehub/backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type jobDocument struct {
	ID          string           `bson:"_id"`
	Title       string           `bson:"title"`
	Description string           `bson:"description"`
	Skills      []string         `bson:"skills"`
	Location    string           `bson:"location"`
	Salary      string           `bson:"salary"`
	JobType     domain.JobType   `bson:"job_type"`
	Status      domain.JobStatus `bson:"status"`
	EmployerID  string           `bson:"employer_id"`
	CompanyName string           `bson:"company_name"`
	CreatedAt   time.Time        `bson:"created_at"`
	UpdatedAt   time.Time        `bson:"updated_at"`
}

func (d *jobDocument) toDomain() *domain.Job {
	return &domain.Job{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Skills:      nonNil(d.Skills),
		Location:    d.Location,
		Salary:      d.Salary,
		JobType:     d.JobType,
		Status:      d.Status,
		EmployerID:  d.EmployerID,
		CompanyName: d.CompanyName,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (r *Repository) CreateJob(ctx context.Context, job *domain.Job) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	ok, err := r.exists(ctx, r.users, job.EmployerID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}

	status := job.Status
	if status == "" {
		status = domain.JobStatusOpen
	}

	now := time.Now().UTC()
	doc := &jobDocument{
		ID:          uuid.NewString(),
		Title:       job.Title,
		Description: job.Description,
		Skills:      nonNil(job.Skills),
		Location:    job.Location,
		Salary:      job.Salary,
		JobType:     job.JobType,
		Status:      status,
		EmployerID:  job.EmployerID,
		CompanyName: job.CompanyName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.jobs.InsertOne(ctx, doc); err != nil {
		return err
	}

	*job = *doc.toDomain()
	return nil
}

// employers loads the summaries of the given user ids keyed by id.
func (r *Repository) employers(ctx context.Context, ids []string) (map[string]*domain.EmployerSummary, error) {
	summaries := make(map[string]*domain.EmployerSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	for _, d := range docs {
		summaries[d.ID] = &domain.EmployerSummary{
			ID:                 d.ID,
			Name:               d.Name,
			CompanyName:        d.CompanyName,
			CompanyDescription: d.CompanyDescription,
		}
	}
	return summaries, nil
}

func (r *Repository) GetJobByID(ctx context.Context, id string) (*domain.Job, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc jobDocument
	if err := r.jobs.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}

	employers, err := r.employers(ctx, []string{doc.EmployerID})
	if err != nil {
		return nil, err
	}

	job := doc.toDomain()
	job.Employer = employers[job.EmployerID]
	return job, nil
}

func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func jobFilter(f repository.JobFilter) bson.M {
	filter := bson.M{}
	if f.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"title": containsFold(f.Search)},
			bson.M{"description": containsFold(f.Search)},
		}
	}
	if len(f.Skills) > 0 {
		filter["skills"] = bson.M{"$in": f.Skills}
	}
	if f.Location != "" {
		filter["location"] = containsFold(f.Location)
	}
	if f.JobType != "" {
		filter["job_type"] = f.JobType
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

func (r *Repository) findJobs(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Job, error) {
	cursor, err := r.jobs.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var docs []jobDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	jobs := make([]*domain.Job, 0, len(docs))
	for i := range docs {
		jobs = append(jobs, docs[i].toDomain())
	}
	return jobs, nil
}

func (r *Repository) ListJobs(ctx context.Context, filter repository.JobFilter) ([]*domain.Job, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(newestFirst)
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	jobs, err := r.findJobs(ctx, jobFilter(filter), opts)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.EmployerID)
	}
	employers, err := r.employers(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, job := range jobs {
		if e, ok := employers[job.EmployerID]; ok {
			job.Employer = &domain.EmployerSummary{ID: e.ID, Name: e.Name, CompanyName: e.CompanyName}
		}
	}
	return jobs, nil
}

func (r *Repository) ListJobsByEmployer(ctx context.Context, employerID string) ([]*domain.Job, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.findJobs(ctx, bson.M{"employer_id": employerID}, options.Find().SetSort(newestFirst))
}

func (r *Repository) UpdateJob(ctx context.Context, job *domain.Job) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"title":       job.Title,
		"description": job.Description,
		"skills":      nonNil(job.Skills),
		"location":    job.Location,
		"salary":      job.Salary,
		"job_type":    job.JobType,
		"status":      job.Status,
		"updated_at":  time.Now().UTC(),
	}}

	var doc jobDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.jobs.FindOneAndUpdate(ctx, bson.M{"_id": job.ID}, update, opts).Decode(&doc); err != nil {
		return notFound(err)
	}

	employer := job.Employer
	*job = *doc.toDomain()
	job.Employer = employer
	return nil
}

func (r *Repository) DeleteJob(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.jobs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}

	_, err = r.applications.DeleteMany(ctx, bson.M{"job_id": id})
	return err
}

func (r *Repository) CountJobs(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.jobs.CountDocuments(ctx, bson.D{})
}

// jobIDsOf returns the ids of the jobs owned by employerID.
func (r *Repository) jobIDsOf(ctx context.Context, employerID string) (bson.A, error) {
	ids, err := r.jobs.Distinct(ctx, "_id", bson.M{"employer_id": employerID})
	if err != nil {
		return nil, err
	}
	if ids == nil {
		return bson.A{}, nil
	}
	return bson.A(ids), nil
}

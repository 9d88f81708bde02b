package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharpframes/sharpframes-processing-service/internal/domain/entity"
)

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

func (r *JobRepository) Create(ctx context.Context, job *entity.Job) error {
	query := `
		INSERT INTO processing_jobs (
			id, user_id, video_key, archive_key, status,
			spherical, mode, sample_count, eligible_count,
			file_size, video_duration, width, height,
			attempt, max_attempts, error_message,
			created_at, updated_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		job.ID, job.UserID, job.VideoKey, job.ArchiveKey, job.Status,
		job.Spherical, job.Mode, job.SampleCount, job.EligibleCount,
		job.FileSize, job.VideoDuration, job.Width, job.Height,
		job.Attempt, job.MaxAttempts, job.ErrorMessage,
		job.CreatedAt, job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *JobRepository) Update(ctx context.Context, job *entity.Job) error {
	query := `
		UPDATE processing_jobs SET
			archive_key = $2, status = $3,
			spherical = $4, mode = $5, sample_count = $6, eligible_count = $7,
			video_duration = $8, width = $9, height = $10,
			attempt = $11, error_message = $12,
			updated_at = $13, completed_at = $14
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		job.ID, job.ArchiveKey, job.Status,
		job.Spherical, job.Mode, job.SampleCount, job.EligibleCount,
		job.VideoDuration, job.Width, job.Height,
		job.Attempt, job.ErrorMessage,
		job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update job: job %s not found", job.ID)
	}
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	query := `
		SELECT id, user_id, video_key, archive_key, status,
			spherical, mode, sample_count, eligible_count,
			file_size, video_duration, width, height,
			attempt, max_attempts, error_message,
			created_at, updated_at, completed_at
		FROM processing_jobs WHERE id = $1`

	job := &entity.Job{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.UserID, &job.VideoKey, &job.ArchiveKey, &job.Status,
		&job.Spherical, &job.Mode, &job.SampleCount, &job.EligibleCount,
		&job.FileSize, &job.VideoDuration, &job.Width, &job.Height,
		&job.Attempt, &job.MaxAttempts, &job.ErrorMessage,
		&job.CreatedAt, &job.UpdatedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find job %s: %w", id, err)
	}
	return job, nil
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/your-org/momentmaker/internal/config"
	"github.com/your-org/momentmaker/internal/models"
)

// AppendOutcome reports how a conditional list append was resolved. The
// backing store has no single upsert-a-list primitive, so appends run as
// update-then-create; Conflict means the create lost a race and the caller
// decides whether to retry the append.
type AppendOutcome int

const (
	OutcomeAppended AppendOutcome = iota
	OutcomeCreatedFresh
	OutcomeConflict
)

func (o AppendOutcome) String() string {
	switch o {
	case OutcomeAppended:
		return "appended"
	case OutcomeCreatedFresh:
		return "created"
	case OutcomeConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate creates the schema if it doesn't exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS media_assets (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			object_key TEXT NOT NULL UNIQUE,
			uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS media_assets_user_idx ON media_assets (user_id)`,
		`CREATE TABLE IF NOT EXISTS face_catalogues (
			user_id TEXT PRIMARY KEY,
			faces JSONB NOT NULL DEFAULT '[]'::jsonb
		)`,
		`CREATE TABLE IF NOT EXISTS identities (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			crop_key TEXT NOT NULL UNIQUE,
			embedding vector(512),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS identities_user_idx ON identities (user_id)`,
		`CREATE TABLE IF NOT EXISTS occurrences (
			user_id TEXT NOT NULL,
			face_key TEXT NOT NULL,
			locations JSONB NOT NULL DEFAULT '[]'::jsonb,
			PRIMARY KEY (user_id, face_key)
		)`,
		`CREATE TABLE IF NOT EXISTS detection_jobs (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			object_key TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS moments (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			object_key TEXT NOT NULL UNIQUE,
			duration_seconds DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// --- Media assets ---

// RegisterAsset records an uploaded asset. Re-registering the same object key
// is a no-op so upload signals can be redelivered safely.
func (s *PostgresStore) RegisterAsset(ctx context.Context, userID string, kind models.MediaKind, objectKey string) (*models.MediaAsset, error) {
	a := &models.MediaAsset{
		ID:         uuid.New(),
		UserID:     userID,
		Kind:       kind,
		ObjectKey:  objectKey,
		UploadedAt: time.Now(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO media_assets (id, user_id, kind, object_key, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (object_key) DO NOTHING`,
		a.ID, a.UserID, a.Kind, a.ObjectKey, a.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("register asset: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListAssets(ctx context.Context, userID string) ([]models.MediaAsset, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, kind, object_key, uploaded_at
		 FROM media_assets WHERE user_id = $1 ORDER BY uploaded_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []models.MediaAsset
	for rows.Next() {
		var a models.MediaAsset
		if err := rows.Scan(&a.ID, &a.UserID, &a.Kind, &a.ObjectKey, &a.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, nil
}

// --- Face catalogue ---

// GetCatalogueFaces returns the user's canonical crop keys in insertion
// order. A user with no catalogue yet gets an empty list.
func (s *PostgresStore) GetCatalogueFaces(ctx context.Context, userID string) ([]string, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT faces FROM face_catalogues WHERE user_id = $1`, userID).Scan(&raw)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get catalogue: %w", err)
	}

	var faces []string
	if err := json.Unmarshal(raw, &faces); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	return faces, nil
}

// AppendCatalogueFace appends a canonical crop key to the user's catalogue.
// Append-to-existing is tried first; when no record exists a fresh one is
// created. Losing the create race reports Conflict without writing.
func (s *PostgresStore) AppendCatalogueFace(ctx context.Context, userID, cropKey string) (AppendOutcome, error) {
	elem, err := json.Marshal([]string{cropKey})
	if err != nil {
		return OutcomeConflict, fmt.Errorf("encode crop key: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE face_catalogues SET faces = faces || $2::jsonb WHERE user_id = $1`,
		userID, elem)
	if err != nil {
		return OutcomeConflict, fmt.Errorf("append catalogue face: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return OutcomeAppended, nil
	}

	tag, err = s.pool.Exec(ctx,
		`INSERT INTO face_catalogues (user_id, faces) VALUES ($1, $2::jsonb)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, elem)
	if err != nil {
		return OutcomeConflict, fmt.Errorf("create catalogue: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return OutcomeCreatedFresh, nil
	}
	return OutcomeConflict, nil
}

// --- Identities ---

func (s *PostgresStore) CreateIdentity(ctx context.Context, userID, cropKey string, embedding []float32) (*models.Identity, error) {
	id := &models.Identity{
		ID:      uuid.New(),
		UserID:  userID,
		CropKey: cropKey,
	}
	var vec *pgvector.Vector
	if len(embedding) > 0 {
		v := pgvector.NewVector(embedding)
		vec = &v
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO identities (id, user_id, crop_key, embedding)
		 VALUES ($1, $2, $3, $4) RETURNING created_at`,
		id.ID, id.UserID, id.CropKey, vec,
	).Scan(&id.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create identity: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) ListIdentities(ctx context.Context, userID string) ([]models.Identity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, crop_key, created_at
		 FROM identities WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var identities []models.Identity
	for rows.Next() {
		var id models.Identity
		if err := rows.Scan(&id.ID, &id.UserID, &id.CropKey, &id.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identities = append(identities, id)
	}
	return identities, nil
}

// GetCropEmbedding returns the cached embedding for a canonical crop, or nil
// when no embedding has been cached yet.
func (s *PostgresStore) GetCropEmbedding(ctx context.Context, cropKey string) ([]float32, error) {
	var vec *pgvector.Vector
	err := s.pool.QueryRow(ctx,
		`SELECT embedding FROM identities WHERE crop_key = $1`, cropKey).Scan(&vec)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get crop embedding: %w", err)
	}
	if vec == nil {
		return nil, nil
	}
	return vec.Slice(), nil
}

// SetCropEmbedding backfills the embedding cache for a canonical crop.
func (s *PostgresStore) SetCropEmbedding(ctx context.Context, cropKey string, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	_, err := s.pool.Exec(ctx,
		`UPDATE identities SET embedding = $2 WHERE crop_key = $1`, cropKey, vec)
	if err != nil {
		return fmt.Errorf("set crop embedding: %w", err)
	}
	return nil
}

// --- Occurrence index ---

// AppendOccurrence appends one location to the per-(user, identity) record,
// creating the record when absent. Same conditional discipline as the
// catalogue append.
func (s *PostgresStore) AppendOccurrence(ctx context.Context, userID, faceKey string, loc models.Location) (AppendOutcome, error) {
	elem, err := json.Marshal([]models.Location{loc})
	if err != nil {
		return OutcomeConflict, fmt.Errorf("encode location: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE occurrences SET locations = locations || $3::jsonb
		 WHERE user_id = $1 AND face_key = $2`,
		userID, faceKey, elem)
	if err != nil {
		return OutcomeConflict, fmt.Errorf("append occurrence: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return OutcomeAppended, nil
	}

	tag, err = s.pool.Exec(ctx,
		`INSERT INTO occurrences (user_id, face_key, locations) VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (user_id, face_key) DO NOTHING`,
		userID, faceKey, elem)
	if err != nil {
		return OutcomeConflict, fmt.Errorf("create occurrence record: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return OutcomeCreatedFresh, nil
	}
	return OutcomeConflict, nil
}

// GetOccurrences returns the union of occurrences for the given identities,
// each annotated with the identity it belongs to. An empty faceKeys set
// returns every occurrence the user has.
func (s *PostgresStore) GetOccurrences(ctx context.Context, userID string, faceKeys []string) ([]models.Occurrence, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if len(faceKeys) == 0 {
		rows, err = s.pool.Query(ctx,
			`SELECT face_key, locations FROM occurrences WHERE user_id = $1`, userID)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT face_key, locations FROM occurrences
			 WHERE user_id = $1 AND face_key = ANY($2)`, userID, faceKeys)
	}
	if err != nil {
		return nil, fmt.Errorf("query occurrences: %w", err)
	}
	defer rows.Close()

	var out []models.Occurrence
	for rows.Next() {
		var (
			faceKey string
			raw     []byte
		)
		if err := rows.Scan(&faceKey, &raw); err != nil {
			return nil, fmt.Errorf("scan occurrence record: %w", err)
		}
		var locs []models.Location
		if err := json.Unmarshal(raw, &locs); err != nil {
			return nil, fmt.Errorf("decode locations for %s: %w", faceKey, err)
		}
		for _, loc := range locs {
			out = append(out, models.Occurrence{
				FaceKey:     faceKey,
				AssetKey:    loc.AssetKey,
				TimestampMS: loc.TimestampMS,
			})
		}
	}
	return out, nil
}

// --- Detection jobs ---

func (s *PostgresStore) CreateJob(ctx context.Context, userID, objectKey string) (*models.DetectionJob, error) {
	j := &models.DetectionJob{
		ID:        uuid.New(),
		UserID:    userID,
		ObjectKey: objectKey,
		Status:    models.JobStatusSubmitted,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO detection_jobs (id, user_id, object_key, status)
		 VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`,
		j.ID, j.UserID, j.ObjectKey, j.Status,
	).Scan(&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*models.DetectionJob, error) {
	j := &models.DetectionJob{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, object_key, status, error, created_at, updated_at
		 FROM detection_jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.UserID, &j.ObjectKey, &j.Status, &j.Error, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status models.JobStatus, errMsg string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE detection_jobs SET status = $1, error = $2, updated_at = now() WHERE id = $3`,
		status, errMsg, id)
	return err
}

// --- Moments ---

func (s *PostgresStore) CreateMoment(ctx context.Context, userID, objectKey string, duration float64) (*models.Moment, error) {
	m := &models.Moment{
		ID:              uuid.New(),
		UserID:          userID,
		ObjectKey:       objectKey,
		DurationSeconds: duration,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO moments (id, user_id, object_key, duration_seconds)
		 VALUES ($1, $2, $3, $4) RETURNING created_at`,
		m.ID, m.UserID, m.ObjectKey, m.DurationSeconds,
	).Scan(&m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create moment: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) ListMoments(ctx context.Context, userID string) ([]models.Moment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, object_key, duration_seconds, created_at
		 FROM moments WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list moments: %w", err)
	}
	defer rows.Close()

	var moments []models.Moment
	for rows.Next() {
		var m models.Moment
		if err := rows.Scan(&m.ID, &m.UserID, &m.ObjectKey, &m.DurationSeconds, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan moment: %w", err)
		}
		moments = append(moments, m)
	}
	return moments, nil
}

func (s *PostgresStore) GetMoment(ctx context.Context, id uuid.UUID) (*models.Moment, error) {
	m := &models.Moment{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, object_key, duration_seconds, created_at
		 FROM moments WHERE id = $1`, id,
	).Scan(&m.ID, &m.UserID, &m.ObjectKey, &m.DurationSeconds, &m.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get moment: %w", err)
	}
	return m, nil
}

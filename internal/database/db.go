package database

import (
	"context"
	"errors"
	"fmt"

	"jokebot/internal/config"
	"jokebot/internal/jokeapi"
	"jokebot/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNoPreferences = errors.New("no preferences stored for chat")
)

type ConnectionError struct {
	Host string
	Port int
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to database at %s:%d: %v", e.Host, e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

type DB struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, &ConnectionError{
			Host: cfg.Host,
			Port: cfg.Port,
			Err:  err,
		}
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, &ConnectionError{
			Host: cfg.Host,
			Port: cfg.Port,
			Err:  err,
		}
	}

	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			last_interaction = CURRENT_TIMESTAMP
		RETURNING id, created_at
	`
	return r.db.Pool.QueryRow(ctx, query,
		user.TelegramID, user.Username, user.FirstName, user.LastName,
	).Scan(&user.ID, &user.CreatedAt)
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// PreferenceRepository stores each chat's joke filter. Enum sets are
// kept in their API string form so rows stay readable in psql.
type PreferenceRepository struct {
	db *DB
}

func NewPreferenceRepository(db *DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

func (r *PreferenceRepository) Save(ctx context.Context, prefs *models.ChatPreferences) error {
	query := `
		INSERT INTO chat_preferences (chat_id, categories, lang, blacklist, safe_mode, subscribed)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (chat_id) DO UPDATE SET
			categories = EXCLUDED.categories,
			lang = EXCLUDED.lang,
			blacklist = EXCLUDED.blacklist,
			safe_mode = EXCLUDED.safe_mode,
			subscribed = EXCLUDED.subscribed,
			updated_at = CURRENT_TIMESTAMP
		RETURNING updated_at
	`
	return r.db.Pool.QueryRow(ctx, query,
		prefs.ChatID,
		prefs.CategoriesString(),
		prefs.Language.Code(),
		prefs.Blacklist.String(),
		prefs.SafeMode,
		prefs.Subscribed,
	).Scan(&prefs.UpdatedAt)
}

func (r *PreferenceRepository) Get(ctx context.Context, chatID int64) (*models.ChatPreferences, error) {
	query := `
		SELECT chat_id, categories, lang, blacklist, safe_mode, subscribed, updated_at
		FROM chat_preferences
		WHERE chat_id = $1
	`
	prefs, err := scanPreferences(r.db.Pool.QueryRow(ctx, query, chatID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoPreferences
		}
		return nil, err
	}
	return prefs, nil
}

// Subscribers returns the preferences of every chat that opted into
// the periodic digest.
func (r *PreferenceRepository) Subscribers(ctx context.Context) ([]*models.ChatPreferences, error) {
	query := `
		SELECT chat_id, categories, lang, blacklist, safe_mode, subscribed, updated_at
		FROM chat_preferences
		WHERE subscribed
		ORDER BY chat_id
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subscribers []*models.ChatPreferences
	for rows.Next() {
		prefs, err := scanPreferences(rows)
		if err != nil {
			return nil, err
		}
		subscribers = append(subscribers, prefs)
	}
	return subscribers, rows.Err()
}

func (r *PreferenceRepository) CountSubscribers(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM chat_preferences WHERE subscribed").Scan(&count)
	return count, err
}

func scanPreferences(row pgx.Row) (*models.ChatPreferences, error) {
	var (
		prefs      models.ChatPreferences
		categories string
		lang       string
		blacklist  string
	)
	err := row.Scan(
		&prefs.ChatID, &categories, &lang, &blacklist,
		&prefs.SafeMode, &prefs.Subscribed, &prefs.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	prefs.SetCategoriesString(categories)
	prefs.Language = jokeapi.ParseLanguage(lang)
	prefs.Blacklist = jokeapi.ParseFlags(blacklist)
	return &prefs, nil
}

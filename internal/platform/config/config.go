package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile            = ".env"
	defaultEnvironment        = "local"
	defaultPort               = "8080"
	defaultReadTimeout        = 15 * time.Second
	defaultWriteTimeout       = 30 * time.Second
	defaultIdleTimeout        = 120 * time.Second
	defaultRequestTimeout     = 20 * time.Second
	defaultCatalogBackend     = BackendFirestore
	defaultCounterRetryWindow = 3 * time.Second
	defaultGalleryPageSize    = 12
	defaultGalleryMaxPageSize = 48
	defaultGallerySessionTTL  = 30 * time.Minute
	defaultGalleryCookie      = "gallery_session"
	defaultInquiryPerMinute   = 6
	defaultInquiryBurst       = 3
	defaultMaxUploadBytes     = 5 << 20
	defaultAdminIssuer        = "woodcraft-atelier"
	defaultIdempotencyTTL     = 24 * time.Hour
	defaultIdempotencyCleanup = 15 * time.Minute
	defaultIdempotencyBatch   = 200
	defaultSecretsFallback    = ".secrets.local"
)

// Catalog storage backends.
const (
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	Server      ServerConfig
	Firebase    FirebaseConfig
	Firestore   FirestoreConfig
	Storage     StorageConfig
	Catalog     CatalogConfig
	Gallery     GalleryConfig
	Inquiries   InquiryConfig
	Admin       AdminConfig
	Idempotency IdempotencyConfig
	Secrets     SecretsConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// FirebaseConfig stores Firebase project settings.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

// StorageConfig points at the bucket holding project and workshop images.
type StorageConfig struct {
	Bucket         string
	PublicBaseURL  string
	MaxUploadBytes int64
}

// CatalogConfig selects the persistence backend.
type CatalogConfig struct {
	Backend            string
	// Seed loads the sample catalog into an empty memory backend on start.
	Seed               bool
	// CounterRetryWindow bounds retries of best-effort counter increments.
	CounterRetryWindow time.Duration
}

// GalleryConfig controls paging and per-visitor gallery sessions.
type GalleryConfig struct {
	PageSize      int
	MaxPageSize   int
	SessionTTL    time.Duration
	SessionCookie string
}

// InquiryConfig throttles the contact form and names the notification topic.
type InquiryConfig struct {
	RatePerMinute int
	Burst         int
	Topic         string
}

// Admin token verification modes.
const (
	AdminAuthHS256    = "hs256"
	AdminAuthFirebase = "firebase"
)

// AdminConfig verifies bearer tokens on administrative routes.
type AdminConfig struct {
	AuthMode   string
	SigningKey string
	Issuer     string
}

// Enabled reports whether admin routes should be mounted.
func (c AdminConfig) Enabled() bool {
	if c.AuthMode == AdminAuthFirebase {
		return true
	}
	return strings.TrimSpace(c.SigningKey) != ""
}

// IdempotencyConfig controls how long Idempotency-Key results are replayed.
type IdempotencyConfig struct {
	TTL              time.Duration
	CleanupInterval  time.Duration
	CleanupBatchSize int
}

// SecretsConfig configures Secret Manager lookups.
type SecretsConfig struct {
	ProjectID    string
	FallbackFile string
}

// SecretResolver resolves references to external secrets (e.g. Secret Manager URIs).
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// Resolve resolves the secret using the wrapped function.
func (f SecretResolverFunc) Resolve(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// SecretError describes failures while resolving a secret reference.
type SecretError struct {
	Ref string
	Err error
}

// Error implements the error interface.
func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

// Unwrap exposes the underlying error.
func (e *SecretError) Unwrap() error { return e.Err }

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	secret       SecretResolver
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithSecretResolver sets the resolver used for secret:// and sm:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.secret = resolver
	}
}

func newLoader(opts []Option) (loaderOptions, func(string) (string, bool), error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnv, err := loadDotEnv(options.envFile)
	if err != nil {
		return loaderOptions{}, nil, err
	}

	lookup := func(key string) (string, bool) {
		if value, ok := options.envMap[key]; ok {
			return value, true
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		value, ok := dotEnv[key]
		return value, ok
	}
	return options, lookup, nil
}

// Bootstrap reads the settings needed before Load can resolve secrets: the
// environment name, the Secret Manager project and the local fallback file.
func Bootstrap(opts ...Option) (string, SecretsConfig, error) {
	_, lookup, err := newLoader(opts)
	if err != nil {
		return "", SecretsConfig{}, err
	}
	env := strings.ToLower(stringWithDefault(lookup, "API_ENVIRONMENT", defaultEnvironment))
	return env, secretsConfig(lookup), nil
}

func secretsConfig(lookup func(string) (string, bool)) SecretsConfig {
	project := stringWithDefault(lookup, "API_SECRETS_PROJECT_ID", "")
	if project == "" {
		project = stringWithDefault(lookup, "API_FIREBASE_PROJECT_ID", "")
	}
	return SecretsConfig{
		ProjectID:    project,
		FallbackFile: stringWithDefault(lookup, "API_SECRETS_FALLBACK_FILE", defaultSecretsFallback),
	}
}

// Load assembles the application configuration by combining defaults, .env overrides,
// environment variables, and optional secret manager lookups.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options, lookup, err := newLoader(opts)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Environment: strings.ToLower(stringWithDefault(lookup, "API_ENVIRONMENT", defaultEnvironment)),
		Server: ServerConfig{
			Port:           stringWithDefault(lookup, "API_SERVER_PORT", defaultPort),
			ReadTimeout:    durationWithDefault(lookup, "API_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:   durationWithDefault(lookup, "API_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:    durationWithDefault(lookup, "API_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			RequestTimeout: durationWithDefault(lookup, "API_SERVER_REQUEST_TIMEOUT", defaultRequestTimeout),
		},
		Firebase: FirebaseConfig{
			ProjectID:       stringWithDefault(lookup, "API_FIREBASE_PROJECT_ID", ""),
			CredentialsFile: stringWithDefault(lookup, "API_FIREBASE_CREDENTIALS_FILE", ""),
		},
		Firestore: FirestoreConfig{
			ProjectID:    stringWithDefault(lookup, "API_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost: stringWithDefault(lookup, "API_FIRESTORE_EMULATOR_HOST", ""),
		},
		Storage: StorageConfig{
			Bucket:         stringWithDefault(lookup, "API_STORAGE_BUCKET", ""),
			PublicBaseURL:  strings.TrimRight(stringWithDefault(lookup, "API_STORAGE_PUBLIC_BASE_URL", ""), "/"),
			MaxUploadBytes: int64(intWithDefault(lookup, "API_STORAGE_MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),
		},
		Catalog: CatalogConfig{
			Backend:            strings.ToLower(stringWithDefault(lookup, "API_CATALOG_BACKEND", defaultCatalogBackend)),
			Seed:               boolWithDefault(lookup, "API_CATALOG_SEED", true),
			CounterRetryWindow: durationWithDefault(lookup, "API_CATALOG_COUNTER_RETRY_WINDOW", defaultCounterRetryWindow),
		},
		Gallery: GalleryConfig{
			PageSize:      intWithDefault(lookup, "API_GALLERY_PAGE_SIZE", defaultGalleryPageSize),
			MaxPageSize:   intWithDefault(lookup, "API_GALLERY_MAX_PAGE_SIZE", defaultGalleryMaxPageSize),
			SessionTTL:    durationWithDefault(lookup, "API_GALLERY_SESSION_TTL", defaultGallerySessionTTL),
			SessionCookie: stringWithDefault(lookup, "API_GALLERY_SESSION_COOKIE", defaultGalleryCookie),
		},
		Inquiries: InquiryConfig{
			RatePerMinute: intWithDefault(lookup, "API_INQUIRY_RATE_PER_MIN", defaultInquiryPerMinute),
			Burst:         intWithDefault(lookup, "API_INQUIRY_RATE_BURST", defaultInquiryBurst),
			Topic:         stringWithDefault(lookup, "API_INQUIRY_TOPIC", ""),
		},
		Admin: AdminConfig{
			AuthMode:   strings.ToLower(stringWithDefault(lookup, "API_ADMIN_AUTH_MODE", AdminAuthHS256)),
			SigningKey: stringWithDefault(lookup, "API_ADMIN_SIGNING_KEY", ""),
			Issuer:     stringWithDefault(lookup, "API_ADMIN_ISSUER", defaultAdminIssuer),
		},
		Idempotency: IdempotencyConfig{
			TTL:              durationWithDefault(lookup, "API_IDEMPOTENCY_TTL", defaultIdempotencyTTL),
			CleanupInterval:  durationWithDefault(lookup, "API_IDEMPOTENCY_CLEANUP_INTERVAL", defaultIdempotencyCleanup),
			CleanupBatchSize: intWithDefault(lookup, "API_IDEMPOTENCY_CLEANUP_BATCH", defaultIdempotencyBatch),
		},
		Secrets: secretsConfig(lookup),
	}

	// Firestore project defaults to Firebase project when unspecified.
	if cfg.Firestore.ProjectID == "" {
		cfg.Firestore.ProjectID = cfg.Firebase.ProjectID
	}

	signingKey, err := resolveSecret(ctx, cfg.Admin.SigningKey, options.secret)
	if err != nil {
		return Config{}, err
	}
	cfg.Admin.SigningKey = signingKey

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	if !isSecretReference(value) {
		return value, nil
	}
	normalized := normalizeSecretReference(value)
	if resolver == nil {
		return "", &SecretError{Ref: normalized, Err: errSecretResolverNotConfigured}
	}
	secret, err := resolver.Resolve(ctx, normalized)
	if err != nil {
		return "", &SecretError{Ref: normalized, Err: err}
	}
	return strings.TrimSpace(secret), nil
}

func validateConfig(cfg Config) error {
	var invalid []string

	if cfg.Server.Port == "" {
		invalid = append(invalid, "Server.Port")
	}
	switch cfg.Catalog.Backend {
	case BackendFirestore:
		if cfg.Firestore.ProjectID == "" {
			invalid = append(invalid, "Firestore.ProjectID")
		}
	case BackendMemory:
	default:
		invalid = append(invalid, "Catalog.Backend")
	}
	if cfg.Gallery.MaxPageSize <= 0 {
		invalid = append(invalid, "Gallery.MaxPageSize")
	}
	if cfg.Gallery.PageSize <= 0 || cfg.Gallery.PageSize > cfg.Gallery.MaxPageSize {
		invalid = append(invalid, "Gallery.PageSize")
	}
	if cfg.Gallery.SessionTTL <= 0 {
		invalid = append(invalid, "Gallery.SessionTTL")
	}
	if strings.TrimSpace(cfg.Gallery.SessionCookie) == "" {
		invalid = append(invalid, "Gallery.SessionCookie")
	}
	if cfg.Inquiries.RatePerMinute < 0 {
		invalid = append(invalid, "Inquiries.RatePerMinute")
	}
	switch cfg.Admin.AuthMode {
	case AdminAuthHS256, AdminAuthFirebase:
	default:
		invalid = append(invalid, "Admin.AuthMode")
	}
	if cfg.Admin.AuthMode == AdminAuthFirebase && cfg.Firebase.ProjectID == "" {
		invalid = append(invalid, "Firebase.ProjectID")
	}
	if cfg.Idempotency.TTL <= 0 {
		invalid = append(invalid, "Idempotency.TTL")
	}
	if cfg.Storage.MaxUploadBytes <= 0 {
		invalid = append(invalid, "Storage.MaxUploadBytes")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func isSecretReference(value string) bool {
	trimmed := strings.TrimSpace(value)
	return strings.HasPrefix(trimmed, "secret://") || strings.HasPrefix(trimmed, "sm://")
}

func normalizeSecretReference(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "sm://") {
		return "secret://" + strings.TrimPrefix(trimmed, "sm://")
	}
	return trimmed
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

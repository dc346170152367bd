package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/woodcraft-atelier/api/internal/platform/auth"
	"github.com/woodcraft-atelier/api/internal/platform/config"
	pfirestore "github.com/woodcraft-atelier/api/internal/platform/firestore"
	"github.com/woodcraft-atelier/api/internal/platform/idempotency"
	"github.com/woodcraft-atelier/api/internal/platform/jobs"
	"github.com/woodcraft-atelier/api/internal/platform/storage"
	"github.com/woodcraft-atelier/api/internal/repositories"
	firestoreRepo "github.com/woodcraft-atelier/api/internal/repositories/firestore"
	"github.com/woodcraft-atelier/api/internal/repositories/memory"
)

const localMediaBucket = "local-media"

// Dial opens the clients for the configured backend. The memory backend
// needs no credentials and keeps everything in process.
func Dial(ctx context.Context, cfg config.Config, logger *zap.Logger) (Infrastructure, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Catalog.Backend {
	case config.BackendMemory:
		return dialMemory(ctx, cfg, logger)
	case config.BackendFirestore:
		return dialCloud(ctx, cfg, logger)
	default:
		return Infrastructure{}, fmt.Errorf("unknown catalog backend %q", cfg.Catalog.Backend)
	}
}

func dialMemory(ctx context.Context, cfg config.Config, logger *zap.Logger) (Infrastructure, error) {
	registry := memory.NewRegistry()
	if cfg.Catalog.Seed {
		report, err := registry.SeedSamples(ctx)
		if err != nil {
			return Infrastructure{}, fmt.Errorf("seed memory catalog: %w", err)
		}
		logger.Info("memory catalog seeded",
			zap.Int("projects", report.Projects),
			zap.Int("inquiries", report.Inquiries),
			zap.Bool("profile", report.Profile),
		)
	}
	infra := Infrastructure{
		Registry:    registry,
		Objects:     storage.NewMemoryStore(),
		Idempotency: idempotency.NewMemoryStore(),
		MediaBucket: localMediaBucket,
	}
	verifier, err := adminVerifier(cfg, nil)
	if err != nil {
		return Infrastructure{}, err
	}
	infra.Verifier = verifier
	return infra, nil
}

func dialCloud(ctx context.Context, cfg config.Config, logger *zap.Logger) (infra Infrastructure, err error) {
	var clientOpts []option.ClientOption
	if file := strings.TrimSpace(cfg.Firebase.CredentialsFile); file != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(file))
	}
	provider := pfirestore.NewProvider(cfg.Firestore, pfirestore.WithClientOptions(clientOpts...))
	defer func() {
		if err == nil {
			return
		}
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for i := len(infra.closers) - 1; i >= 0; i-- {
			_ = infra.closers[i](closeCtx)
		}
		_ = provider.Close(closeCtx)
	}()

	firestoreClient, err := provider.Client(ctx)
	if err != nil {
		return infra, fmt.Errorf("firestore client: %w", err)
	}

	projectID := cfg.Firebase.ProjectID
	if projectID == "" {
		projectID = cfg.Firestore.ProjectID
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     projectID,
		StorageBucket: cfg.Storage.Bucket,
	}, clientOpts...)
	if err != nil {
		return infra, fmt.Errorf("firebase app: %w", err)
	}

	var checks []repositories.DependencyCheck

	if strings.TrimSpace(cfg.Storage.Bucket) != "" {
		storageClient, err := app.Storage(ctx)
		if err != nil {
			return infra, fmt.Errorf("firebase storage: %w", err)
		}
		bucket, err := storageClient.DefaultBucket()
		if err != nil {
			return infra, fmt.Errorf("storage bucket: %w", err)
		}
		objects, err := storage.NewBucketStore(bucket)
		if err != nil {
			return infra, err
		}
		infra.Objects = objects
		checks = append(checks, repositories.DependencyCheck{
			Name:    "storage",
			Timeout: 2 * time.Second,
			Check: func(ctx context.Context) error {
				_, err := bucket.Attrs(ctx)
				return err
			},
		})
	} else {
		logger.Warn("storage bucket not configured; media uploads disabled")
	}

	if topicID := strings.TrimSpace(cfg.Inquiries.Topic); topicID != "" {
		pubsubClient, err := pubsub.NewClient(ctx, projectID, clientOpts...)
		if err != nil {
			return infra, fmt.Errorf("pubsub client: %w", err)
		}
		publisher, err := jobs.NewPubSubInquiryPublisher(pubsubClient.Topic(topicID))
		if err != nil {
			_ = pubsubClient.Close()
			return infra, err
		}
		infra.Notifier = publisher
		infra.AddCloser(func(context.Context) error {
			publisher.Stop()
			return pubsubClient.Close()
		})
		checks = append(checks, repositories.DependencyCheck{
			Name:    "pubsub",
			Timeout: 2 * time.Second,
			Check:   publisher.Check,
		})
	}

	registry, err := firestoreRepo.NewRegistry(provider, checks...)
	if err != nil {
		return infra, fmt.Errorf("firestore registry: %w", err)
	}
	infra.Registry = registry
	infra.Idempotency = idempotency.NewFirestoreStore(firestoreClient)

	var tokens auth.FirebaseTokenClient
	if cfg.Admin.AuthMode == config.AdminAuthFirebase {
		authClient, err := app.Auth(ctx)
		if err != nil {
			return infra, fmt.Errorf("firebase auth: %w", err)
		}
		tokens = authClient
	}
	verifier, err := adminVerifier(cfg, tokens)
	if err != nil {
		return infra, err
	}
	infra.Verifier = verifier
	return infra, nil
}

// adminVerifier returns nil when admin routes are disabled.
func adminVerifier(cfg config.Config, tokens auth.FirebaseTokenClient) (auth.TokenVerifier, error) {
	if !cfg.Admin.Enabled() {
		return nil, nil
	}
	switch cfg.Admin.AuthMode {
	case config.AdminAuthFirebase:
		if tokens == nil {
			return nil, errors.New("firebase admin auth requires the firestore backend")
		}
		verifier, err := auth.NewFirebaseVerifier(tokens)
		if err != nil {
			return nil, err
		}
		return verifier, nil
	default:
		verifier, err := auth.NewHS256Verifier(cfg.Admin.SigningKey, cfg.Admin.Issuer)
		if err != nil {
			return nil, err
		}
		return verifier, nil
	}
}

package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/woodcraft-atelier/api/internal/domain"
	pfirestore "github.com/woodcraft-atelier/api/internal/platform/firestore"
	"github.com/woodcraft-atelier/api/internal/repositories"
)

const (
	profileCollection = "woodmakerProfile"
	profileDocumentID = "primary"
)

// ProfileRepository keeps the woodmaker profile in a single document.
type ProfileRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[profileDocument]
}

var _ repositories.ProfileRepository = (*ProfileRepository)(nil)

func NewProfileRepository(provider *pfirestore.Provider) (*ProfileRepository, error) {
	if provider == nil {
		return nil, errors.New("profile repository requires firestore provider")
	}
	return &ProfileRepository{
		provider: provider,
		base:     pfirestore.NewBaseRepository[profileDocument](provider, profileCollection, nil),
	}, nil
}

func (r *ProfileRepository) Get(ctx context.Context) (domain.WoodmakerProfile, bool, error) {
	doc, found, err := r.base.Find(ctx, profileDocumentID)
	if err != nil || !found {
		return domain.WoodmakerProfile{}, false, err
	}
	return doc.Data.toDomain(), true, nil
}

// Save upserts the profile inside a transaction so createdAt of an existing
// document survives concurrent saves. The saved document is read back to
// return the store assigned timestamps.
func (r *ProfileRepository) Save(ctx context.Context, profile domain.WoodmakerProfile) (domain.WoodmakerProfile, error) {
	err := r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref, err := r.base.DocumentRef(ctx, profileDocumentID)
		if err != nil {
			return err
		}
		// Zero timestamps are stamped by Firestore; only an existing
		// createdAt is carried over.
		doc := encodeProfile(profile)

		snapshot, err := tx.Get(ref)
		switch status.Code(err) {
		case codes.OK:
			existing, decodeErr := r.base.Decode(snapshot)
			if decodeErr != nil {
				return decodeErr
			}
			doc.CreatedAt = existing.Data.CreatedAt
		case codes.NotFound:
		default:
			return err
		}
		return tx.Set(ref, doc)
	})
	if err != nil {
		return domain.WoodmakerProfile{}, pfirestore.WrapError("woodmakerProfile.save", err)
	}
	saved, found, err := r.Get(ctx)
	if err != nil {
		return domain.WoodmakerProfile{}, err
	}
	if !found {
		return domain.WoodmakerProfile{}, pfirestore.NotFoundError("woodmakerProfile.save", profileDocumentID)
	}
	return saved, nil
}

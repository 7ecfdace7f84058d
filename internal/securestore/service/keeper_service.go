package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	storeDomain "github.com/allisson/trustkit/internal/securestore/domain"

	// Register KMS provider drivers
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// keeperService implements DataKeyKeeper using gocloud.dev/secrets.
//
// The keeper never sees stored records: it only wraps and unwraps the 32-byte
// data key that encrypts the store at rest. For local deployments the
// base64key:// scheme keeps everything on device; hosts with a vault can point
// the same URI at hashivault://.
type keeperService struct {
	keeper *secrets.Keeper
}

// OpenKeeper opens a data-key keeper for the given URI.
// Supported schemes: base64key://, hashivault://.
func OpenKeeper(ctx context.Context, keeperURI string) (DataKeyKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keeperURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storeDomain.ErrKeeperUnavailable, err)
	}
	return &keeperService{keeper: keeper}, nil
}

// Wrap encrypts a plaintext data key for persistence.
func (k *keeperService) Wrap(ctx context.Context, dataKey []byte) ([]byte, error) {
	wrapped, err := k.keeper.Encrypt(ctx, dataKey)
	if err != nil {
		return nil, fmt.Errorf("%w: wrap: %v", storeDomain.ErrKeeperUnavailable, err)
	}
	return wrapped, nil
}

// Unwrap decrypts a previously wrapped data key.
func (k *keeperService) Unwrap(ctx context.Context, wrapped []byte) ([]byte, error) {
	dataKey, err := k.keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: unwrap: %v", storeDomain.ErrKeeperUnavailable, err)
	}
	return dataKey, nil
}

// Close releases keeper resources.
func (k *keeperService) Close() error {
	return k.keeper.Close()
}

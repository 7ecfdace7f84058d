package app

import (
	"context"
	"fmt"

	storeDomain "github.com/allisson/trustkit/internal/securestore/domain"
	storeHTTP "github.com/allisson/trustkit/internal/securestore/http"
	storeRepository "github.com/allisson/trustkit/internal/securestore/repository"
	storeService "github.com/allisson/trustkit/internal/securestore/service"
	storeUseCase "github.com/allisson/trustkit/internal/securestore/usecase"
)

// RecordRepository returns the encrypted record repository for the configured backend.
func (c *Container) RecordRepository() (storeUseCase.RecordRepository, error) {
	var err error
	c.recordRepositoryInit.Do(func() {
		c.recordRepository, err = c.initRecordRepository()
		if err != nil {
			c.initErrors["recordRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["recordRepository"]; exists {
		return nil, storedErr
	}
	return c.recordRepository, nil
}

// SecureStoreUseCase returns the secure store use case.
func (c *Container) SecureStoreUseCase() (storeUseCase.SecureStoreUseCase, error) {
	var err error
	c.secureStoreUseCaseInit.Do(func() {
		c.secureStoreUseCase, err = c.initSecureStoreUseCase()
		if err != nil {
			c.initErrors["secureStoreUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secureStoreUseCase"]; exists {
		return nil, storedErr
	}
	return c.secureStoreUseCase, nil
}

// RecordHandler returns the HTTP handler for record operations.
func (c *Container) RecordHandler() (*storeHTTP.RecordHandler, error) {
	var err error
	c.recordHandlerInit.Do(func() {
		c.recordHandler, err = c.initRecordHandler()
		if err != nil {
			c.initErrors["recordHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["recordHandler"]; exists {
		return nil, storedErr
	}
	return c.recordHandler, nil
}

// initRecordRepository creates the record repository based on the storage backend,
// wrapped with AEAD encryption at rest under a keeper-managed data key.
func (c *Container) initRecordRepository() (storeUseCase.RecordRepository, error) {
	var inner storeRepository.PlainRecordRepository
	switch c.config.StorageBackend {
	case "file":
		fileRepo, err := storeRepository.NewFileRecordRepository(c.config.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open store file: %w", err)
		}
		inner = fileRepo
	case "postgres":
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for record repository: %w", err)
		}
		inner = storeRepository.NewPostgreSQLRecordRepository(db)
	case "mysql":
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for record repository: %w", err)
		}
		inner = storeRepository.NewMySQLRecordRepository(db)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", c.config.StorageBackend)
	}

	keeper, err := c.Keeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get keeper for record repository: %w", err)
	}

	repo, err := storeRepository.NewEncryptedRecordRepository(
		context.Background(),
		inner,
		storeService.NewAEADManager(),
		keeper,
		storeDomain.Algorithm(c.config.StorageAlgorithm),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted record repository: %w", err)
	}
	return repo, nil
}

// initSecureStoreUseCase creates the secure store use case with all its dependencies.
func (c *Container) initSecureStoreUseCase() (storeUseCase.SecureStoreUseCase, error) {
	recordRepository, err := c.RecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for secure store use case: %w", err)
	}

	keyDeriver := storeService.NewKeyDeriver(c.config.KeyDerivationIterations)

	baseUseCase := storeUseCase.NewSecureStoreUseCase(
		recordRepository,
		keyDeriver,
		c.config.KeyRotationInterval,
		c.config.KeyDerivationIterations,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for secure store use case: %w", err)
		}
		return storeUseCase.NewSecureStoreUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initRecordHandler creates the record HTTP handler with all its dependencies.
func (c *Container) initRecordHandler() (*storeHTTP.RecordHandler, error) {
	secureStoreUseCase, err := c.SecureStoreUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get secure store use case for record handler: %w", err)
	}

	auditLogUseCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for record handler: %w", err)
	}

	logger := c.Logger()

	return storeHTTP.NewRecordHandler(secureStoreUseCase, auditLogUseCase, logger), nil
}

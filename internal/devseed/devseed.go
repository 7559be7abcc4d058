// Package devseed populates a development database with a known set of
// accounts and sample ingestion data. It is only invoked in dev mode.
package devseed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/docuflow/ingest-api/internal/data"
	"github.com/docuflow/ingest-api/internal/domain/auth"
	"github.com/docuflow/ingest-api/internal/domain/model"
	apperrors "github.com/docuflow/ingest-api/internal/errors"
)

// Services bundles the dependencies needed for development seeding.
type Services struct {
	users      *data.UserRepo
	ingestions *data.IngestionRepo
	documents  *data.DocumentRepo
}

// NewServices constructs the repositories used for seeding from the provided DB.
func NewServices(db *sql.DB) Services {
	return Services{
		users:      data.NewUserRepo(db),
		ingestions: data.NewIngestionRepo(db, data.IngestionRepoConfig{}),
		documents:  data.NewDocumentRepo(db),
	}
}

type seedUser struct {
	username string
	email    string
	password string
	role     auth.Role
}

var seedUsers = []seedUser{
	{username: "admin", email: "admin@example.com", password: "admin-dev-password", role: auth.RoleAdmin},
	{username: "demo", email: "demo@example.com", password: "demo-dev-password", role: auth.RoleUser},
	{username: "viewer", email: "viewer@example.com", password: "viewer-dev-password", role: auth.RoleViewer},
}

// Run executes the full development seeding workflow against the provided DB.
// Seeding is idempotent: records that already exist are left alone.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	demoID, err := seedAccounts(ctx, svcs.users, logger)
	if err != nil {
		return err
	}
	if demoID == "" {
		// Users already present; nothing more to seed.
		return nil
	}

	if err := seedSampleData(ctx, svcs, demoID, logger); err != nil {
		return err
	}
	return nil
}

// seedAccounts creates the development accounts. Returns the demo user's id,
// or empty string when the accounts already existed.
func seedAccounts(ctx context.Context, users *data.UserRepo, logger *slog.Logger) (string, error) {
	demoID := ""
	for _, u := range seedUsers {
		if _, err := users.GetByUsername(ctx, u.username); err == nil {
			continue
		} else if !apperrors.IsNotFound(err) {
			return "", fmt.Errorf("look up seed user %s: %w", u.username, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.MinCost)
		if err != nil {
			return "", fmt.Errorf("hash seed password: %w", err)
		}

		created, err := users.Create(ctx, &model.CreateUserRequest{
			Username:     u.username,
			Email:        u.email,
			PasswordHash: string(hash),
			Role:         u.role,
		})
		if err != nil {
			if apperrors.IsConflict(err) {
				continue
			}
			return "", fmt.Errorf("create seed user %s: %w", u.username, err)
		}

		if u.username == "demo" {
			demoID = created.ID
		}
		if logger != nil {
			logger.InfoContext(ctx, "seeded user", "username", created.Username, "role", created.Role)
		}
	}
	return demoID, nil
}

func seedSampleData(ctx context.Context, svcs Services, ownerID string, logger *slog.Logger) error {
	samples := []model.CreateIngestionRequest{
		{
			OwnerID:     ownerID,
			Source:      "s3://docuflow-dev/raw/orders.csv",
			Destination: "warehouse.orders",
			Metadata:    json.RawMessage(`{"format":"csv","delimiter":","}`),
		},
		{
			OwnerID:     ownerID,
			Source:      "https://api.example.com/feeds/customers",
			Destination: "warehouse.customers",
			MaxRetries:  5,
		},
	}
	for _, req := range samples {
		if _, err := svcs.ingestions.Create(ctx, &req); err != nil {
			return fmt.Errorf("create seed ingestion: %w", err)
		}
	}

	if _, err := svcs.documents.Create(ctx, &model.CreateDocumentRequest{
		OwnerID:     ownerID,
		FileName:    "onboarding.pdf",
		ContentType: "application/pdf",
		SizeBytes:   48213,
		StorageKey:  "dev/onboarding.pdf",
	}); err != nil {
		return fmt.Errorf("create seed document: %w", err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "seeded sample ingestions and documents", "owner_id", ownerID)
	}
	return nil
}

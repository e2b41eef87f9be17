package cmd

import (
	"context"
	"fmt"

	"github.com/legalnest/backend/internal/app"
	"github.com/legalnest/backend/internal/model"
	"github.com/legalnest/backend/internal/repository"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo contacts and enquiries into the configured storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := app.Bootstrap(cfgPath)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx := context.Background()
		repo, err := app.OpenSubmissions(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer repo.Close()

		n, err := seedSubmissions(ctx, repo)
		if err != nil {
			return err
		}
		log.Info("seed completed", zap.String("mode", repo.Mode().String()), zap.Int("records", n))
		return nil
	},
}

// seedSubmissions appends demo records; no notifications are sent. Running it
// twice stores the records twice.
func seedSubmissions(ctx context.Context, repo repository.SubmissionsRepository) (int, error) {
	demo := []model.Submission{
		{
			Kind:    model.KindContact,
			Name:    "Ravi Kumar",
			Email:   "ravi.kumar@example.com",
			Phone:   "+91 98450 12345",
			Message: "I would like to know the documents needed for GST registration.",
		},
		{
			Kind:    model.KindContact,
			Name:    "Meera Iyer",
			Email:   "meera.iyer@example.com",
			Message: "Can you help with annual ROC filings for a private limited company?",
		},
		{
			Kind:    model.KindEnquiry,
			Name:    "Asha Rao",
			Email:   "asha@example.com",
			Phone:   "9876543210",
			Service: "GST Registration",
			City:    "Bengaluru",
		},
		{
			Kind:    model.KindEnquiry,
			Name:    "Vikram Shah",
			Email:   "vikram.shah@example.com",
			Phone:   "(022) 4012-3456",
			Service: "Trademark Registration",
			City:    "Mumbai",
			Details: "Two logos and one word mark, classes 25 and 35.",
		},
	}

	for _, s := range demo {
		if _, err := repo.Append(ctx, s.Kind.Collection(), s); err != nil {
			return 0, fmt.Errorf("seed %s %q: %w", s.Kind, s.Name, err)
		}
	}
	return len(demo), nil
}

// Command loaddata imports the ingredient and tag catalog and can promote
// an existing user to admin.
//
//	loaddata -ingredients data/ingredients.csv -tags data/tags.yaml
//	loaddata -admin chef@example.com
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"foodgram/internal/catalog"
	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/logger"
	"foodgram/internal/models"
	"foodgram/internal/repositories"
	"foodgram/internal/validation"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	ingredientsPath := flag.String("ingredients", "", "CSV file with name,measurement_unit rows")
	tagsPath := flag.String("tags", "", "YAML file with a tags list")
	adminEmail := flag.String("admin", "", "email of a user to promote to admin")
	flag.Parse()

	cfg := config.Load()
	log, flush, err := logger.Install(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer flush()

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	if err := run(context.Background(), db, log, *ingredientsPath, *tagsPath, *adminEmail); err != nil {
		log.Fatal("loaddata failed", zap.Error(err))
	}
}

func run(ctx context.Context, db *gorm.DB, log *zap.Logger, ingredientsPath, tagsPath, adminEmail string) error {
	if ingredientsPath == "" && tagsPath == "" && adminEmail == "" {
		return fmt.Errorf("nothing to do: pass -ingredients, -tags or -admin")
	}

	loader := catalog.NewLoader(
		repositories.NewGORMIngredientRepository(db),
		repositories.NewGORMTagRepository(db),
		validation.New(),
		log,
	)

	if ingredientsPath != "" {
		if err := loadFile(ingredientsPath, func(f *os.File) (catalog.Result, error) {
			return loader.LoadIngredients(ctx, f)
		}); err != nil {
			return err
		}
	}
	if tagsPath != "" {
		if err := loadFile(tagsPath, func(f *os.File) (catalog.Result, error) {
			return loader.LoadTags(ctx, f)
		}); err != nil {
			return err
		}
	}
	if adminEmail != "" {
		if err := repositories.NewGORMUserRepository(db).SetRole(ctx, adminEmail, models.RoleAdmin); err != nil {
			return err
		}
		log.Info("user promoted to admin", zap.String("email", adminEmail))
	}
	return nil
}

func loadFile(path string, load func(f *os.File) (catalog.Result, error)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := load(f); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

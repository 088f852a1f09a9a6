package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Result counts what an import did.
type Result struct {
	Created int
	Skipped int
}

// ingredientRow is one line of the ingredients file.
type ingredientRow struct {
	Name            string `validate:"required,max=200"`
	MeasurementUnit string `validate:"required,max=200"`
}

// Loader imports catalog data. Imports are idempotent: rows whose name
// (ingredients) or slug (tags) already exists are skipped.
type Loader struct {
	ingredients repositories.IngredientRepository
	tags        repositories.TagRepository
	validate    *validator.Validate
	log         *zap.Logger
}

// NewLoader creates a new Loader.
func NewLoader(ingredients repositories.IngredientRepository, tags repositories.TagRepository, validate *validator.Validate, log *zap.Logger) *Loader {
	return &Loader{ingredients: ingredients, tags: tags, validate: validate, log: log}
}

// LoadIngredients reads "name,measurement_unit" rows. A first row that
// reads exactly "name,measurement_unit" is treated as a header.
func (l *Loader) LoadIngredients(ctx context.Context, r io.Reader) (Result, error) {
	var result Result
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("failed to read ingredients: %w", err)
		}
		if line == 1 && strings.EqualFold(record[0], "name") && strings.EqualFold(record[1], "measurement_unit") {
			continue
		}

		row := ingredientRow{Name: strings.TrimSpace(record[0]), MeasurementUnit: strings.TrimSpace(record[1])}
		if err := l.validate.Struct(row); err != nil {
			return result, fmt.Errorf("invalid ingredient on line %d: %w", line, err)
		}

		created, err := l.ingredients.CreateIfMissing(ctx, &models.Ingredient{
			Name:            row.Name,
			MeasurementUnit: row.MeasurementUnit,
		})
		if err != nil {
			return result, fmt.Errorf("failed to store ingredient %q: %w", row.Name, err)
		}
		if created {
			result.Created++
			l.log.Debug("ingredient created", zap.String("name", row.Name))
		} else {
			result.Skipped++
			l.log.Debug("ingredient already exists", zap.String("name", row.Name))
		}
	}

	l.log.Info("ingredients loaded", zap.Int("created", result.Created), zap.Int("skipped", result.Skipped))
	return result, nil
}

// tagsFile is the layout of the tags YAML file:
//
//	tags:
//	  - name: Breakfast
//	    color: "#E26C2D"
//	    slug: breakfast
type tagsFile struct {
	Tags []struct {
		Name  string `yaml:"name"`
		Color string `yaml:"color"`
		Slug  string `yaml:"slug"`
	} `yaml:"tags"`
}

// LoadTags reads tags from YAML.
func (l *Loader) LoadTags(ctx context.Context, r io.Reader) (Result, error) {
	var result Result
	var file tagsFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return result, fmt.Errorf("failed to parse tags: %w", err)
	}

	for i, entry := range file.Tags {
		tag := &models.Tag{
			Name:  strings.TrimSpace(entry.Name),
			Color: strings.ToUpper(strings.TrimSpace(entry.Color)),
			Slug:  strings.TrimSpace(entry.Slug),
		}
		if err := l.validate.Struct(tag); err != nil {
			return result, fmt.Errorf("invalid tag #%d: %w", i+1, err)
		}

		created, err := l.tags.CreateIfMissing(ctx, tag)
		if err != nil {
			return result, fmt.Errorf("failed to store tag %q: %w", tag.Slug, err)
		}
		if created {
			result.Created++
			l.log.Debug("tag created", zap.String("slug", tag.Slug))
		} else {
			result.Skipped++
			l.log.Debug("tag already exists", zap.String("slug", tag.Slug))
		}
	}

	l.log.Info("tags loaded", zap.Int("created", result.Created), zap.Int("skipped", result.Skipped))
	return result, nil
}

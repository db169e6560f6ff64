// Package seed loads a catalog manifest into the store. The manifest is a
// YAML tree mirroring the catalog hierarchy; applying it goes through the
// store's upserts, so re-running the same manifest converges instead of
// erroring, and a corrected document reference overwrites the stale one.
package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/edushelf/edushelf/internal/catalogsrv/db"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/models"
	"github.com/edushelf/edushelf/internal/catalogsrv/docstore"
)

type Manifest struct {
	Colleges []CollegeSpec `yaml:"colleges" validate:"required,min=1,dive"`
}

type CollegeSpec struct {
	Name    string       `yaml:"name" validate:"required,max=512"`
	Courses []CourseSpec `yaml:"courses" validate:"dive"`
}

type CourseSpec struct {
	Name      string         `yaml:"name" validate:"required,max=512"`
	Code      string         `yaml:"code" validate:"max=64"`
	Semesters []SemesterSpec `yaml:"semesters" validate:"dive"`
}

type SemesterSpec struct {
	Number   int           `yaml:"number" validate:"required,min=1"`
	Name     string        `yaml:"name" validate:"max=128"`
	Subjects []SubjectSpec `yaml:"subjects" validate:"dive"`
}

type SubjectSpec struct {
	Name  string     `yaml:"name" validate:"required,max=512"`
	Code  string     `yaml:"code" validate:"max=64"`
	Units []UnitSpec `yaml:"units" validate:"dive"`
}

type UnitSpec struct {
	Number      int    `yaml:"number" validate:"required,min=1"`
	Name        string `yaml:"name" validate:"required,max=512"`
	Description string `yaml:"description"`
	// Source selects the delivery backend for the unit's document. Ref is
	// the stored reference; File optionally names a local file to upload
	// under that reference while seeding.
	Source string `yaml:"source" validate:"omitempty,oneof=local remote"`
	Ref    string `yaml:"ref" validate:"required_with=Source"`
	File   string `yaml:"file"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := validate.Struct(&m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}

// Apply upserts the manifest tree into the store. Document uploads are
// resolved relative to baseDir, the manifest's directory.
func Apply(ctx context.Context, store db.CatalogStore, docs docstore.DocumentStore, m *Manifest, baseDir string) error {
	for _, cs := range m.Colleges {
		college := &models.College{Name: cs.Name}
		if err := store.UpsertCollege(ctx, college); err != nil {
			return fmt.Errorf("college %q: %w", cs.Name, err)
		}
		log.Ctx(ctx).Info().Str("college", cs.Name).Msg("seeded college")

		for _, crs := range cs.Courses {
			course := &models.Course{Name: crs.Name, Code: crs.Code, CollegeID: college.ID}
			if err := store.UpsertCourse(ctx, course); err != nil {
				return fmt.Errorf("course %q: %w", crs.Name, err)
			}

			for _, ss := range crs.Semesters {
				sem := &models.Semester{CourseID: course.ID, Number: ss.Number, Name: ss.Name}
				if err := store.UpsertSemester(ctx, sem); err != nil {
					return fmt.Errorf("semester %d of %q: %w", ss.Number, crs.Name, err)
				}

				for _, sub := range ss.Subjects {
					subject := &models.Subject{SemesterID: sem.ID, Name: sub.Name, Code: sub.Code}
					if err := store.UpsertSubject(ctx, subject); err != nil {
						return fmt.Errorf("subject %q: %w", sub.Name, err)
					}

					for _, us := range sub.Units {
						if err := applyUnit(ctx, store, docs, subject.ID, us, baseDir); err != nil {
							return fmt.Errorf("unit %d of %q: %w", us.Number, sub.Name, err)
						}
					}
				}
			}
		}
	}
	return nil
}

func applyUnit(ctx context.Context, store db.CatalogStore, docs docstore.DocumentStore,
	subjectID string, us UnitSpec, baseDir string) error {
	unit := &models.Unit{
		SubjectID:   subjectID,
		Name:        us.Name,
		Number:      us.Number,
		Description: us.Description,
		SourceKind:  models.SourceKind(us.Source),
		SourceRef:   us.Ref,
	}
	if err := store.UpsertUnit(ctx, unit); err != nil {
		return err
	}
	if us.File == "" {
		return nil
	}
	if docs == nil {
		return fmt.Errorf("manifest uploads a file but no document store is configured")
	}
	path := us.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", us.File, err)
	}
	defer f.Close()
	if err := docs.Put(ctx, us.Ref, f, contentType(us.Ref)); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("ref", us.Ref).Msg("uploaded unit document")
	return nil
}

func contentType(ref string) string {
	if filepath.Ext(ref) == ".pdf" {
		return "application/pdf"
	}
	return "application/octet-stream"
}

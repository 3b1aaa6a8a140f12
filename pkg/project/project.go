// Package project stores named path sets so a tree can be reopened later.
//
// A [Project] records the raw path list a user submitted together with the
// nodes they had expanded. Two [Store] backends exist: [FileStore] for the
// CLI and single-node servers, and [MongoStore] for shared deployments.
//
// Project IDs are validated with [errors.ValidateProjectID]; a missing
// project is reported with the PROJECT_NOT_FOUND code.
//
// [errors.ValidateProjectID]: github.com/kafei-ai/treeflow/pkg/errors.ValidateProjectID
package project

import (
	"context"
	"slices"
	"time"

	"github.com/kafei-ai/treeflow/pkg/errors"
)

// Project is a saved path set.
type Project struct {
	ID        string    `json:"id" bson:"_id"`
	Paths     []string  `json:"paths" bson:"paths"`
	Expanded  []string  `json:"expanded" bson:"expanded"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Store persists projects.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the project with the given ID or a PROJECT_NOT_FOUND error.
	Get(ctx context.Context, id string) (Project, error)

	// Put creates or replaces a project and stamps UpdatedAt.
	Put(ctx context.Context, p Project) (Project, error)

	// Delete removes a project. Deleting a missing project is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all project IDs in ascending order.
	List(ctx context.Context) ([]string, error)

	// Close releases resources held by the store.
	Close() error
}

// prepare validates p and fills the fields every backend stores.
func prepare(p Project, now time.Time) (Project, error) {
	if err := errors.ValidateProjectID(p.ID); err != nil {
		return Project{}, err
	}
	if err := errors.ValidatePathList(p.Paths); err != nil {
		return Project{}, err
	}
	p.Paths = nonNil(slices.Clone(p.Paths))
	p.Expanded = nonNil(slices.Clone(p.Expanded))
	p.UpdatedAt = now.UTC().Truncate(time.Millisecond)
	return p, nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeProjectNotFound, "project %q not found", id)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

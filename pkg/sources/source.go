// Package sources defines the contract for repository servers that
// projects are harvested from, together with the project record they
// yield and a bounded concurrent fetch over a whole server.
//
// Example usage:
//
//	src := xnat.New(cfg)
//	projects, failures, err := sources.FetchAll(ctx, src, constants.MaxConcurrentRequests)
//	if err != nil {
//	    // configuration or authentication failure, nothing was harvested
//	}
//	for _, f := range failures {
//	    // per-project fetch errors, the run continues without them
//	}
package sources

import (
	"context"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/logging"
)

// ID identifies a kind of repository server.
type ID string

// String returns the string representation of a source ID.
func (id ID) String() string {
	return string(id)
}

// XNATID identifies the XNAT source.
const XNATID ID = "xnat"

// Source fetches projects from a repository server.
type Source interface {
	// ID returns the kind of server.
	ID() ID

	// ListProjects returns the identifiers of all projects visible to the
	// configured credentials. Authentication failures are fatal.
	ListProjects(ctx context.Context) ([]string, error)

	// FetchProject returns one fully populated project, including its
	// supplemental form payload when a form is configured.
	FetchProject(ctx context.Context, id string) (*Project, error)
}

// FetchAll lists every project and fetches them on a pool of at most
// concurrency workers. Per-project failures are returned as FetchErrors
// and do not stop the harvest; a failed listing or a fatal error does.
// Projects are returned sorted by identifier.
func FetchAll(ctx context.Context, src Source, concurrency int) ([]*Project, []error, error) {
	logger := logging.FromContext(ctx)

	ids, err := src.ListProjects(ctx)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Int("projects", len(ids)).Str("source", src.ID().String()).Msg("Listed projects")

	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu       sync.Mutex
		projects = make([]*Project, 0, len(ids))
		failures []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, id := range ids {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			p, err := src.FetchProject(gctx, id)
			if err != nil {
				if errors.IsFatal(err) {
					return err
				}
				if gctx.Err() != nil {
					return gctx.Err()
				}
				var fetchErr *errors.FetchError
				if !errors.As(err, &fetchErr) {
					err = errors.NewFetchError(id, err)
				}
				logging.FromContext(logging.WithProject(gctx, id)).Warn().Err(err).Msg("Skipping project")
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
				return nil
			}
			mu.Lock()
			projects = append(projects, p)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, failures, err
	}
	if err := ctx.Err(); err != nil {
		return nil, failures, errors.Join(errors.ErrCanceled, err)
	}

	slices.SortFunc(projects, func(a, b *Project) int {
		return strings.Compare(a.ID, b.ID)
	})
	return projects, failures, nil
}

package route

import (
	"context"

	"github.com/viaduct-dev/viaduct/internal/errors"
)

// CollectMetadata merges route metadata along the matched chain into
// Metadata, root to leaf: a deeper level's key overwrites a shallower
// one's, and within one level computed metadata overwrites static.
// It must run before FlattenTransient so grouping routes contribute
// their metadata before being spliced away.
func (m *MatchResult) CollectMetadata(ctx context.Context) error {
	if m.SubTree == nil {
		return nil
	}
	merged := make(map[string]any)
	info := Info{Params: m.Params, Query: m.Query}
	for node := m.SubTree; node != nil; node = node.Child {
		for k, v := range node.Route.metadata {
			merged[k] = v
		}
		if fn := node.Route.metadataFunc; fn != nil {
			extra, err := fn(ctx, info)
			if err != nil {
				return errors.New("N002").
					WithDetailf("metadata for route %q failed", node.Route.pattern).
					Wrap(err)
			}
			for k, v := range extra {
				merged[k] = v
			}
		}
	}
	m.Metadata = merged
	return nil
}

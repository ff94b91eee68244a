// Package scoring estimates feature interactions and defects and combines the
// scan results into a health score.
package scoring

import (
	"strings"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/constants"
)

// FeatureInteractions returns 2^n - 1 - n, the number of interaction paths
// among n features involving two or more of them
func FeatureInteractions(n int) int64 {
	if n <= 1 {
		return 0
	}
	if n > constants.MaxFeatureExponent {
		n = constants.MaxFeatureExponent
	}
	return int64(1)<<uint(n) - 1 - int64(n)
}

// CountFeatures counts features of non-test code files with the given proxy.
// "routes" sums route and endpoint pattern hits; "modules" counts distinct
// top-level directories, with root files forming one module. Unknown proxies
// fall back to routes.
func CountFeatures(files []*domain.FileMetrics, proxy string) (int, string) {
	if proxy != constants.FeatureProxyModules {
		proxy = constants.FeatureProxyRoutes
	}

	hits := 0
	modules := make(map[string]bool)
	for _, f := range files {
		if f == nil || f.IsTest || !f.Support.CountsAsCode() {
			continue
		}
		hits += f.FeatureHits
		if top, _, found := strings.Cut(f.Path, "/"); found {
			modules[top] = true
		} else {
			modules["."] = true
		}
	}

	if proxy == constants.FeatureProxyModules {
		return len(modules), proxy
	}
	return hits, proxy
}

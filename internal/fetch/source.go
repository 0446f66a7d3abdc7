// Package fetch retrieves raw page markup through an ordered chain of
// retrieval sources.
package fetch

import (
	"context"

	"github.com/sells-group/leadscout/internal/model"
)

// MinContentLen is the smallest payload considered a usable page. Anything
// shorter is treated as an empty page and the next source is tried.
const MinContentLen = 100

// Source fetches a single URL and returns its raw markup.
type Source interface {
	Fetch(ctx context.Context, url string) (*model.Page, error)
	Name() string
	Supports(url string) bool
}

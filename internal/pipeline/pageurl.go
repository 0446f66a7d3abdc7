package pipeline

import (
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
)

// Pagination parameter styles. "start" and "offset" carry a zero-based
// item offset, "page" carries the one-based page number itself.
const (
	ParamStart  = "start"
	ParamPage   = "page"
	ParamOffset = "offset"
)

// InferPaginationParam picks the pagination style from the query
// parameters already present on the directory base URL. A bare URL
// defaults to the page-number style.
func InferPaginationParam(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ParamPage
	}
	q := u.Query()
	for _, p := range []string{ParamStart, ParamOffset, ParamPage} {
		if q.Has(p) {
			return p
		}
	}
	return ParamPage
}

// PageURL builds the URL for a one-based page number by setting the
// pagination parameter on the base URL. Offset-style parameters are
// computed as (page-1)*itemsPerPage.
func PageURL(baseURL, param string, page, itemsPerPage int) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", eris.Wrapf(err, "pipeline: parse base url %q", baseURL)
	}
	if page < 1 {
		return "", eris.Errorf("pipeline: page number %d out of range", page)
	}
	q := u.Query()
	switch param {
	case ParamStart, ParamOffset:
		q.Set(param, strconv.Itoa((page-1)*itemsPerPage))
	default:
		q.Set(ParamPage, strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

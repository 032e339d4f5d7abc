package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"hirepath/internal/pkg/apperror"
	"hirepath/internal/pkg/response"
	"hirepath/internal/store"
)

func parseID(c fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation(name+": A valid id is required.", err)
	}
	return id, nil
}

func badBody(err error) error {
	return apperror.Validation(response.MessageBadRequest, err)
}

// serverFilters returns the query parameters not consumed by local filtering.
func serverFilters(c fiber.Ctx, local ...string) store.Filters {
	skip := make(map[string]struct{}, len(local))
	for _, k := range local {
		skip[k] = struct{}{}
	}
	out := store.Filters{}
	for k, v := range c.Queries() {
		if _, ok := skip[strings.ToLower(k)]; ok {
			continue
		}
		out[k] = v
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func metaOf[T any](snap store.CollectionSnapshot[T], shown int) response.Meta {
	return response.Meta{
		Count:       snap.Count,
		Loaded:      snap.Shown(),
		Shown:       shown,
		Next:        snap.Next,
		HasMore:     snap.HasMore(),
		Loading:     snap.Loading,
		LoadingMore: snap.LoadingMore,
	}
}

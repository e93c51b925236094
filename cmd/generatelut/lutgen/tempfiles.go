package lutgen

import (
	"errors"
	"os"
)

// tempFiles records the intermediate images a pipeline run created, once per
// path, in creation order.
type tempFiles struct {
	paths []string
	seen  map[string]bool
}

func (t *tempFiles) add(path string) {
	if t.seen == nil {
		t.seen = make(map[string]bool)
	}
	if t.seen[path] {
		return
	}
	t.seen[path] = true
	t.paths = append(t.paths, path)
}

func (t *tempFiles) list() []string {
	return append([]string(nil), t.paths...)
}

// removeAll deletes every recorded path except keep and returns the paths it
// removed.
func (t *tempFiles) removeAll(keep string) ([]string, error) {
	var removed []string
	var errs []error
	for _, path := range t.paths {
		if path == keep {
			continue
		}
		if err := os.Remove(path); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, path)
	}
	if len(errs) > 0 {
		return removed, ioError("cleanup", "", errors.Join(errs...))
	}
	return removed, nil
}

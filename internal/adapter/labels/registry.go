package labels

import (
	"fmt"
	"strings"
)

// Registry assigns stable integer ids to categorical labels. Ids of the
// declared labels follow declaration order, so they are identical across
// runs and processes. An open registry appends unseen labels after them; a
// strict one rejects them.
type Registry struct {
	name   string
	ids    map[string]int
	labels []string
	strict bool
}

// NewRegistry seeds a registry with the declared labels.
func NewRegistry(name string, declared []string, strict bool) *Registry {
	r := &Registry{
		name:   name,
		ids:    make(map[string]int, len(declared)),
		strict: strict,
	}
	for _, label := range declared {
		r.add(normalize(label))
	}
	return r
}

func normalize(label string) string {
	return strings.TrimSpace(label)
}

func (r *Registry) add(label string) int {
	if id, ok := r.ids[label]; ok {
		return id
	}
	id := len(r.labels)
	r.ids[label] = id
	r.labels = append(r.labels, label)
	return id
}

// ID returns the id of label, registering it when the registry is open.
func (r *Registry) ID(label string) (int, error) {
	label = normalize(label)
	if id, ok := r.ids[label]; ok {
		return id, nil
	}
	if r.strict {
		return 0, fmt.Errorf("unknown %s label %q (declared: %s)", r.name, label, strings.Join(r.labels, ", "))
	}
	return r.add(label), nil
}

// Label returns the label with the given id.
func (r *Registry) Label(id int) (string, bool) {
	if id < 0 || id >= len(r.labels) {
		return "", false
	}
	return r.labels[id], true
}

// Labels returns the registered labels in id order.
func (r *Registry) Labels() []string {
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}

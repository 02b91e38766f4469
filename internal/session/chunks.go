package session

import (
	"sort"
	"strconv"
	"strings"
)

// Fragment is one size-bounded slice of a token string, named by position.
// Fragment 0 carries the bare base name; fragment i>0 is named "<base>.<i>".
type Fragment struct {
	Name  string
	Value string
}

// splitChunks cuts value into ceil(len/max) ordered fragments of at most
// max bytes each.
func splitChunks(base, value string, max int) []Fragment {
	if value == "" {
		return nil
	}
	if max <= 0 {
		return []Fragment{{Name: base, Value: value}}
	}
	out := make([]Fragment, 0, (len(value)+max-1)/max)
	for i := 0; i*max < len(value); i++ {
		end := (i + 1) * max
		if end > len(value) {
			end = len(value)
		}
		out = append(out, Fragment{
			Name:  fragmentName(base, i),
			Value: value[i*max : end],
		})
	}
	return out
}

func fragmentName(base string, i int) string {
	if i == 0 {
		return base
	}
	return base + "." + strconv.Itoa(i)
}

// fragmentIndex maps a slot name back to its position. The bare base name
// is position 0; otherwise the trailing numeric suffix is the position.
// ok is false for names that do not belong to the fragment set.
func fragmentIndex(base, name string) (int, bool) {
	if name == base {
		return 0, true
	}
	rest, found := strings.CutPrefix(name, base+".")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// reassemble restores the original string from fragments regardless of the
// order they were read from storage: sort by position, then concatenate.
func reassemble(base string, frags []Fragment) string {
	type indexed struct {
		pos   int
		value string
	}
	ordered := make([]indexed, 0, len(frags))
	for _, f := range frags {
		pos, ok := fragmentIndex(base, f.Name)
		if !ok {
			continue
		}
		ordered = append(ordered, indexed{pos: pos, value: f.Value})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].pos < ordered[j].pos })

	var b strings.Builder
	for _, f := range ordered {
		b.WriteString(f.value)
	}
	return b.String()
}

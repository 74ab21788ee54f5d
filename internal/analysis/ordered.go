package analysis

// ordered is an insertion-ordered map used to accumulate groups keyed by pattern.
type ordered[V any] struct {
	keys  []string
	index map[string]*V
}

func newOrdered[V any]() *ordered[V] {
	return &ordered[V]{index: make(map[string]*V)}
}

// get returns the value for key, creating it with init on first sight.
func (o *ordered[V]) get(key string, init func() V) *V {
	if v, ok := o.index[key]; ok {
		return v
	}
	v := init()
	o.index[key] = &v
	o.keys = append(o.keys, key)
	return &v
}

func (o *ordered[V]) len() int {
	return len(o.keys)
}

// each visits values in insertion order.
func (o *ordered[V]) each(fn func(key string, v *V)) {
	for _, k := range o.keys {
		fn(k, o.index[k])
	}
}

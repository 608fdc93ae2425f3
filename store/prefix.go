package store

type prefixStore struct {
	parent KVStore
	prefix []byte
}

// NewPrefixStore returns a view of parent in which every key is prefixed.
func NewPrefixStore(parent KVStore, prefix []byte) KVStore {
	return &prefixStore{parent: parent, prefix: append([]byte{}, prefix...)}
}

func (p *prefixStore) key(key []byte) []byte {
	return append(append(make([]byte, 0, len(p.prefix)+len(key)), p.prefix...), key...)
}

func (p *prefixStore) Get(key []byte) ([]byte, error) { return p.parent.Get(p.key(key)) }
func (p *prefixStore) Has(key []byte) (bool, error)   { return p.parent.Has(p.key(key)) }
func (p *prefixStore) Set(key, value []byte) error    { return p.parent.Set(p.key(key), value) }
func (p *prefixStore) Delete(key []byte) error        { return p.parent.Delete(p.key(key)) }

func (p *prefixStore) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	return p.parent.Iterate(p.key(prefix), func(key, value []byte) bool {
		return fn(key[len(p.prefix):], value)
	})
}

package store

// FakeStore is an in-memory Store for tests.
type FakeStore struct {
	// Values holds the stored floats.
	Values map[string]float64

	// Puts counts PutFloat calls, for cadence assertions.
	Puts int

	// PutError, if set, will be returned by PutFloat.
	PutError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{Values: make(map[string]float64)}
}

// GetFloat returns the stored value or def.
func (f *FakeStore) GetFloat(key string, def float64) float64 {
	if v, ok := f.Values[key]; ok {
		return v
	}
	return def
}

// PutFloat records the value.
func (f *FakeStore) PutFloat(key string, value float64) error {
	f.Puts++
	if f.PutError != nil {
		return f.PutError
	}
	f.Values[key] = value
	return nil
}

// Close marks the store as closed.
func (f *FakeStore) Close() error {
	f.Closed = true
	return nil
}

package analog

import "errors"

// FakeReader is a test double returning scripted raw codes per channel.
type FakeReader struct {
	// Codes contains scripted raw values per channel. Each read consumes
	// the next value; when exhausted, the last value repeats.
	Codes map[Channel][]int

	// ReadError, if set, will be returned by ReadRaw.
	ReadError error

	// Closed tracks if Close was called.
	Closed bool

	index map[Channel]int
}

// NewFakeReader creates a FakeReader with the given scripted codes.
func NewFakeReader(codes map[Channel][]int) *FakeReader {
	return &FakeReader{Codes: codes, index: make(map[Channel]int)}
}

// Fixed creates a FakeReader returning one constant code per channel.
func Fixed(pressure, temperature int) *FakeReader {
	return NewFakeReader(map[Channel][]int{
		ChannelPressure:    {pressure},
		ChannelTemperature: {temperature},
	})
}

// ReadRaw returns the next scripted code for the channel.
func (f *FakeReader) ReadRaw(ch Channel) (int, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	codes := f.Codes[ch]
	if len(codes) == 0 {
		return 0, errors.New("no codes configured for channel")
	}
	i := f.index[ch]
	if i < len(codes)-1 {
		f.index[ch] = i + 1
	}
	return codes[i], nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

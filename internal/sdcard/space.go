package sdcard

// Space is the capacity of the filesystem holding the card.
type Space struct {
	Total uint64
	Free  uint64 // available to unprivileged writers
}

// Used returns the bytes in use, including filesystem overhead.
func (s Space) Used() uint64 {
	if s.Free > s.Total {
		return 0
	}
	return s.Total - s.Free
}

// Space reports the capacity of the filesystem under the mount point.
func (c *Card) Space() (Space, error) {
	s, err := statSpace(c.root)
	if err != nil {
		return Space{}, classify(c.root, err)
	}
	return s, nil
}

// Total returns the size of the card's filesystem in bytes.
func (c *Card) Total() (uint64, error) {
	s, err := c.Space()
	return s.Total, err
}

// Free returns the bytes still available for writing.
func (c *Card) Free() (uint64, error) {
	s, err := c.Space()
	return s.Free, err
}

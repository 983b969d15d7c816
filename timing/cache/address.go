package cache

// Decoder splits addresses into the fields used by the cache and the
// translation layer.
type Decoder struct {
	b        uint
	tagShift uint // C-S
	p        uint
}

// NewDecoder creates a decoder for the given configuration.
func NewDecoder(config Config) Decoder {
	return Decoder{
		b:        config.B,
		tagShift: config.C - config.S,
		p:        config.P,
	}
}

// Physical returns the tag and set index of a physical address.
func (d Decoder) Physical(addr uint64) (tag, index uint64) {
	return d.Tag(addr), d.Index(addr)
}

// Tag returns the bits of addr above the index.
func (d Decoder) Tag(addr uint64) uint64 {
	return addr >> d.tagShift
}

// Index returns the bits of addr in [B, C-S). A single-set cache has no index
// bits and always uses set 0.
func (d Decoder) Index(addr uint64) uint64 {
	if d.tagShift == d.b {
		return 0
	}

	shift := 64 - d.tagShift
	return (addr << shift) >> (shift + d.b)
}

// Virtual returns the virtual page number and page offset of addr.
func (d Decoder) Virtual(addr uint64) (vpn, offset uint64) {
	offset = addr & (1<<d.p - 1)
	vpn = addr >> d.p

	return vpn, offset
}

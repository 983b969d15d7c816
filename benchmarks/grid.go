package benchmarks

import "github.com/sarchlab/cachesim/timing/cache"

// Grid describes a set of cache configurations as the cross product of
// per-field value lists. An empty list takes the field from the default
// configuration of the mode. P, T and M are ignored in PIPT mode.
type Grid struct {
	VIPT bool
	C    []uint
	B    []uint
	S    []uint
	P    []uint
	T    []uint
	M    []uint
}

// Configs expands the grid. Points are ordered with C varying slowest and M
// fastest. Points that normalize to the same configuration appear once.
func (g Grid) Configs() []cache.Config {
	def := cache.DefaultPIPTConfig()
	if g.VIPT {
		def = cache.DefaultVIPTConfig()
	}

	or := func(values []uint, fallback uint) []uint {
		if len(values) == 0 {
			return []uint{fallback}
		}
		return values
	}

	ps, ts, ms := []uint{0}, []uint{0}, []uint{0}
	if g.VIPT {
		ps, ts, ms = or(g.P, def.P), or(g.T, def.T), or(g.M, def.M)
	}

	seen := make(map[cache.Config]bool)
	var configs []cache.Config
	for _, c := range or(g.C, def.C) {
		for _, b := range or(g.B, def.B) {
			for _, s := range or(g.S, def.S) {
				for _, p := range ps {
					for _, t := range ts {
						for _, m := range ms {
							config := cache.Config{
								C: c, B: b, S: s, VIPT: g.VIPT, P: p, T: t, M: m,
							}.Normalized()
							if seen[config] {
								continue
							}
							seen[config] = true
							configs = append(configs, config)
						}
					}
				}
			}
		}
	}

	return configs
}

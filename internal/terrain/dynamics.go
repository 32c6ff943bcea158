package terrain

import "math"

// UpdateDynamics advances the environmental simulation by dt simulated
// seconds: pollution diffuses to neighboring cells, then pollution and
// noise decay toward zero absent fresh sources.
func (f *Field) UpdateDynamics(dt float64) {
	if dt <= 0 {
		return
	}
	f.spreadPollution(dt)
	f.naturalRecovery(dt)
}

// spreadPollution lets each cell above the floor donate a dt-scaled
// fraction of its pollution equally to its four axis neighbors.
// Double-buffered into a delta slice so iteration order doesn't bias
// the result.
func (f *Field) spreadPollution(dt float64) {
	frac := spreadRate * dt
	if frac > 0.25 {
		frac = 0.25 // never drain a cell in one step
	}

	delta := make([]float64, len(f.cells))
	for row := 0; row < f.rows; row++ {
		for col := 0; col < f.cols; col++ {
			idx := f.index(col, row)
			p := f.cells[idx].Pollution
			if p <= pollutionFloor {
				continue
			}
			donation := p * frac
			share := donation / 4
			for _, d := range [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}} {
				nCol, nRow := col+d[0], row+d[1]
				if !f.inBounds(nCol, nRow) {
					continue // edge cells vent off-grid
				}
				delta[f.index(nCol, nRow)] += share
			}
			delta[idx] -= donation
		}
	}

	for i := range f.cells {
		if delta[i] == 0 {
			continue
		}
		f.cells[i].Pollution += delta[i]
		if f.cells[i].Pollution < 0 {
			f.cells[i].Pollution = 0
		}
		f.markDirty(i%f.cols, i/f.cols)
	}
}

// naturalRecovery decays pollution and noise exponentially toward zero.
func (f *Field) naturalRecovery(dt float64) {
	decay := math.Exp(-recoveryRate * dt)
	for i := range f.cells {
		c := &f.cells[i]
		if c.Pollution == 0 && c.Noise == 0 {
			continue
		}
		c.Pollution *= decay
		c.Noise *= decay
		if c.Pollution < 1e-6 {
			c.Pollution = 0
		}
		if c.Noise < 1e-6 {
			c.Noise = 0
		}
	}
}

package systems

import "gonum.org/v1/gonum/mat"

// Diffuser runs the per-step pheromone evaporation and diffusion pass.
// It keeps a scratch matrix that is swapped with the field's pheromone
// matrix after each pass, so every cell reads only pre-pass values.
type Diffuser struct {
	Evaporation float64
	Diffusion   float64

	scratch *mat.Dense
}

// NewDiffuser creates a diffuser with the given coefficients in [0, 1].
func NewDiffuser(evaporation, diffusion float64) *Diffuser {
	return &Diffuser{Evaporation: evaporation, Diffusion: diffusion}
}

// Step applies
//
//	new = (1 - evap) * (p + diff * (mean(neighbors) - p))
//
// to every active cell, where the mean runs over in-bounds Moore neighbors.
// Border cells of a bordered field keep their value.
func (d *Diffuser) Step(f *Field) {
	n := f.dim
	if d.scratch == nil {
		d.scratch = mat.NewDense(n, n, nil)
	} else if r, _ := d.scratch.Dims(); r != n {
		d.scratch = mat.NewDense(n, n, nil)
	}

	src := f.pheromone.RawMatrix().Data
	dst := d.scratch.RawMatrix().Data
	lo, hi := f.bounds()

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			i := y*n + x
			if x < lo || y < lo || x >= hi || y >= hi {
				dst[i] = src[i]
				continue
			}

			var sum float64
			var count int
			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= n {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if (dx == 0 && dy == 0) || nx < 0 || nx >= n {
						continue
					}
					sum += src[ny*n+nx]
					count++
				}
			}

			p := src[i]
			if p == 0 && sum == 0 {
				dst[i] = 0
				continue
			}
			avg := 0.0
			if count > 0 {
				avg = sum / float64(count)
			}
			v := (1 - d.Evaporation) * (p + d.Diffusion*(avg-p))
			dst[i] = clamp(v, 0, f.maxPheromone)
		}
	}

	f.pheromone, d.scratch = d.scratch, f.pheromone
}

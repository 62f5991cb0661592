package moc

import (
	"errors"
	"fmt"

	"github.com/ctessum/sparse"
)

// Transport array ranks accepted by Streamfunction.
const (
	rankLayerYX     = 3
	rankLeadLayerYX = 4
)

// Axis positions counted from the trailing end of the transport shape.
const (
	axisOffsetLayer = 3
	axisOffsetY     = 2
	axisOffsetX     = 1
)

// Sentinel errors for streamfunction inputs.
var (
	// ErrTransportRank indicates a transport array that is neither
	// [layer, y, x] nor [n, layer, y, x].
	ErrTransportRank = errors.New("transport must have rank 3 [layer, y, x] or rank 4 [n, layer, y, x]")

	// ErrMaskShape indicates a horizontal mask whose shape does not match
	// the transport's trailing [y, x] axes.
	ErrMaskShape = errors.New("mask shape must match the transport [y, x] axes")
)

// Streamfunction sums meridional transport zonally and cumulatively in the
// vertical to yield an overturning streamfunction on layer interfaces.
//
// The transport is [layer, y, x] or [n, layer, y, x] with the layer axis
// ordered top to bottom. The result has the layer axis replaced by an
// interface axis of length layer+1: [interface, y] or [n, interface, y].
// The bottom interface row is exactly zero, and each interface above it
// subtracts the zonal sum of the layer below:
//
//	psi[k-1] = psi[k] - sum_x(mask * transport[k-1])
//
// mask is an optional [y, x] multiplier applied before the zonal sum; pass
// nil to integrate over the whole domain.
func Streamfunction(transport, mask *sparse.DenseArray) (*sparse.DenseArray, error) {
	rank := len(transport.Shape)
	if rank != rankLayerYX && rank != rankLeadLayerYX {
		return nil, fmt.Errorf("%w: got rank %d", ErrTransportRank, rank)
	}

	nz := transport.Shape[rank-axisOffsetLayer]
	ny := transport.Shape[rank-axisOffsetY]
	nx := transport.Shape[rank-axisOffsetX]

	if mask != nil {
		if len(mask.Shape) != 2 || mask.Shape[0] != ny || mask.Shape[1] != nx {
			return nil, fmt.Errorf("%w: mask %v, transport %v", ErrMaskShape, mask.Shape, transport.Shape)
		}
	}

	if rank == rankLayerYX {
		psi := sparse.ZerosDense(nz+1, ny)
		accumulate(psi, 0, transport, 0, mask, nz, ny, nx)

		return psi, nil
	}

	lead := transport.Shape[0]
	psi := sparse.ZerosDense(lead, nz+1, ny)

	for n := range lead {
		accumulate(psi, n*(nz+1)*ny, transport, n*nz*ny*nx, mask, nz, ny, nx)
	}

	return psi, nil
}

// accumulate fills one [interface, y] block of psi from one [layer, y, x]
// block of transport. The bottom interface row (index nz) stays zero.
func accumulate(psi *sparse.DenseArray, psiOff int, transport *sparse.DenseArray, tOff int, mask *sparse.DenseArray, nz, ny, nx int) {
	for k := nz; k >= 1; k-- {
		for j := range ny {
			base := tOff + ((k-1)*ny+j)*nx

			sum := 0.0

			for i := range nx {
				v := transport.Elements[base+i]
				if mask != nil {
					v *= mask.Elements[j*nx+i]
				}

				sum += v
			}

			psi.Elements[psiOff+(k-1)*ny+j] = psi.Elements[psiOff+k*ny+j] - sum
		}
	}
}

// InterfaceMidpoints averages adjacent interface rows of a rank-2
// [interface, y] streamfunction, returning layer-midpoint values [layer, y].
func InterfaceMidpoints(psi *sparse.DenseArray) *sparse.DenseArray {
	nzi := psi.Shape[0]
	ny := psi.Shape[1]
	out := sparse.ZerosDense(nzi-1, ny)

	for k := range nzi - 1 {
		for j := range ny {
			out.Elements[k*ny+j] = 0.5 * (psi.Elements[k*ny+j] + psi.Elements[(k+1)*ny+j])
		}
	}

	return out
}

// Scale multiplies every element of a by factor in place and returns a.
// Diagnostics use it to convert accumulated transport into Sverdrups.
func Scale(a *sparse.DenseArray, factor float64) *sparse.DenseArray {
	for i, v := range a.Elements {
		a.Elements[i] = v * factor
	}

	return a
}

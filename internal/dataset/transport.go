package dataset

import "errors"

// Transport variable names and their conversions to sverdrups. vmo carries
// kg/s and vh m3/s, except that files defining zw predate the vh unit fix
// and store kg/s.
const (
	VarVMO = "vmo"
	VarVH  = "vh"
	VarZW  = "zw"

	convVMOToSv  = 1e-9
	convVHToSv   = 1e-6
	convVHZWToSv = 1e-9
)

// ErrNoTransportVar indicates a dataset without a meridional transport
// variable.
var ErrNoTransportVar = errors.New(`could not find "vh" or "vmo"`)

// VarChecker reports whether a dataset defines a variable.
type VarChecker interface {
	Has(name string) bool
}

// Transport names the meridional transport variable of a dataset and the
// factor converting it to sverdrups.
type Transport struct {
	Name       string
	Conversion float64
}

// SelectTransport picks the transport variable of a dataset, preferring vmo.
func SelectTransport(f VarChecker) (Transport, error) {
	switch {
	case f.Has(VarVMO):
		return Transport{Name: VarVMO, Conversion: convVMOToSv}, nil
	case f.Has(VarVH):
		t := Transport{Name: VarVH, Conversion: convVHToSv}
		if f.Has(VarZW) {
			t.Conversion = convVHZWToSv
		}

		return t, nil
	default:
		return Transport{}, ErrNoTransportVar
	}
}

package config

// Default configuration values.
const (
	DefaultNCDir        = "ncfiles"
	DefaultStoreDir     = "diags"
	DefaultHTMLDir      = "report"
	DefaultMOC          = true
	DefaultWorkers      = 0
	DefaultMemoryBudget = "2GiB"
	DefaultLogLevel     = "info"
	DefaultReportTitle  = "Oceanstat"
	DefaultReportTheme  = "light"
)

// DefaultSurfaceVars is the surface diagnostic variable selection.
var DefaultSurfaceVars = []string{"SSH", "tos", "sos", "mlotst", "oml", "speed"}

// DefaultForcingVars is the forcing diagnostic variable selection.
var DefaultForcingVars = []string{
	"friver", "ficeberg", "fsitherm", "hfsnthermds", "sfdsi",
	"hflso", "seaice_melt_heat", "wfo", "hfds", "Heat_PmE",
}

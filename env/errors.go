package env

import "github.com/megs-sim/megs/errors"

// Sentinels for errors.Is. They match on phase and kind only.
var (
	ErrCompile        = &errors.Error{Phase: errors.PhaseCompile, Kind: errors.KindCompile}
	ErrContractExport = &errors.Error{Phase: errors.PhaseContract, Kind: errors.KindMissingExport}
	ErrContractImport = &errors.Error{Phase: errors.PhaseContract, Kind: errors.KindMissingImport}
	ErrIO             = &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindIO}
	ErrInvalidPath    = &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidPath}
	ErrNotFound       = &errors.Error{Phase: errors.PhaseInstantiate, Kind: errors.KindNotFound}
	ErrNoInstance     = &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindNotFound}
	ErrInstantiation  = &errors.Error{Phase: errors.PhaseInstantiate, Kind: errors.KindInstantiation}
	ErrTrap           = &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindTrap}
)

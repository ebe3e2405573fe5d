package memory

import (
	"fmt"

	"github.com/jnesss/hunt-recorder/types"
)

// ShortReadError reports a read that returned fewer bytes than requested
type ShortReadError struct {
	Addr uint64
	Want int
	Got  int
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("short read at 0x%x: got %d of %d bytes", e.Addr, e.Got, e.Want)
}

// Unwrap classifies short reads as region read failures
func (e *ShortReadError) Unwrap() error {
	return types.NewError(types.KindRegionReadFailure, fmt.Sprintf("0x%x", e.Addr), nil)
}

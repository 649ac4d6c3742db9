package dx12

import (
	"errors"

	"github.com/gogpu/wgpu/hal"
)

// HRESULT is a Windows result code.
type HRESULT uint32

// Result codes reported for execution-layer failures.
const (
	SOK                      HRESULT = 0
	EFail                    HRESULT = 0x80004005
	EInvalidArg              HRESULT = 0x80070057
	EOutOfMemory             HRESULT = 0x8007000E
	DXGIErrorDeviceRemoved   HRESULT = 0x887A0005
	DXGIErrorWasStillDrawing HRESULT = 0x887A000A
	DXGIErrorWaitTimeout     HRESULT = 0x887A0027
	DXGIErrorNotFound        HRESULT = 0x887A0002
	DXGIErrorInvalidCall     HRESULT = 0x887A0001
)

// Code returns h as the signed value Windows APIs report.
func (h HRESULT) Code() int64 { return int64(int32(h)) }

// Failed reports whether h is a failure code.
func (h HRESULT) Failed() bool { return int32(h) < 0 }

var resultCodes = []struct {
	err  error
	code HRESULT
}{
	{hal.ErrDeviceLost, DXGIErrorDeviceRemoved},
	{hal.ErrDeviceOutOfMemory, EOutOfMemory},
	{hal.ErrSurfaceLost, DXGIErrorInvalidCall},
	{hal.ErrSurfaceOutdated, DXGIErrorInvalidCall},
	{hal.ErrTimeout, DXGIErrorWaitTimeout},
	{hal.ErrNotReady, DXGIErrorWasStillDrawing},
	{hal.ErrInvalidMapRange, EInvalidArg},
	{hal.ErrBackendNotFound, DXGIErrorNotFound},
}

// ResultCode returns the HRESULT matching err, or EFail.
func ResultCode(err error) HRESULT {
	for _, rc := range resultCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return EFail
}

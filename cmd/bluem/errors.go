package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/srg/bluem/internal/busd"
)

// FormatUserError turns bus and timeout errors into a single readable line
func FormatUserError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out waiting for the mock; is 'bluem serve' running?"
	}

	if errors.Is(err, busd.ErrNameTaken) {
		return err.Error() + "; is another 'bluem serve' running?"
	}

	var busErr dbus.Error
	if errors.As(err, &busErr) {
		return formatBusError(busErr)
	}
	var busErrPtr *dbus.Error
	if errors.As(err, &busErrPtr) {
		return formatBusError(*busErrPtr)
	}
	return err.Error()
}

func formatBusError(e dbus.Error) string {
	short := e.Name[strings.LastIndexByte(e.Name, '.')+1:]
	if len(e.Body) > 0 {
		return fmt.Sprintf("%s: %v", short, e.Body[0])
	}
	return short
}

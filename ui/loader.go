package ui

import (
	"context"

	"github.com/diamondburned/gotk4/pkg/gio/v2"

	"github.com/yllada/vncviewer/connection"
)

// gioLoader reads connection files through GIO, so any location GIO can
// mount (local paths, file://, sftp://, smb://) can be opened.
type gioLoader struct{}

var _ connection.Loader = gioLoader{}

func (gioLoader) Load(ctx context.Context, location string) ([]byte, error) {
	file := gio.NewFileForCommandlineArg(location)
	data, _, err := file.LoadContents(ctx)
	return data, err
}

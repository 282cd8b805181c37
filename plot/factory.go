package plot

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Renderer names accepted by NewSink.
const (
	RendererPNG   = "png"
	RendererHTML  = "html"
	RendererTable = "table"
	RendererNone  = "none"
)

// NewSink builds the fan-out of sinks named in renderers. PNG and HTML output goes to dir,
// named after prefix; the table renderer writes to out.
func NewSink(renderers []string, dir, prefix string, out io.Writer) (MultiSink, error) {
	var sinks MultiSink
	for _, name := range renderers {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case RendererPNG:
			sinks = append(sinks, NewPNGSink(dir, prefix))
		case RendererHTML:
			sinks = append(sinks, NewHTMLSink(filepath.Join(dir, FileName(prefix, "charts")+".html")))
		case RendererTable:
			sinks = append(sinks, NewTableSink(out))
		case RendererNone, "":
		default:
			return nil, fmt.Errorf("unknown chart renderer %q", name)
		}
	}
	if len(sinks) == 0 {
		sinks = append(sinks, NopSink{})
	}
	return sinks, nil
}

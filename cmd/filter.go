package cmd

import (
	"io"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/pwnmux/pwnmux/internal/config"
	"github.com/pwnmux/pwnmux/internal/engine"
	"github.com/pwnmux/pwnmux/internal/layout"
	"github.com/pwnmux/pwnmux/internal/source"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Rewrite a single debugger stream from stdin to stdout",
	Long: `Filter sits at the end of a debugger pipeline and annotates its output
in place: context blocks are captured and replayed, announcement lines
are suppressed, and everything else passes through untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFilter(cmd.InOrStdin(), cmd.OutOrStdout(), GetConfig())
	},
}

// streamSink writes replay output straight back into the stream, which
// is what a bare terminal pipeline wants.
type streamSink struct {
	w io.Writer
}

func (s streamSink) WriteSession(id string, data string) {
	io.WriteString(s.w, data)
}

func runFilter(r io.Reader, w io.Writer, cfg config.Config) error {
	var layouts engine.LayoutRequester
	if !cfg.DisableLayouts {
		layouts = &layout.Installer{}
	}

	cols := 0
	if f, ok := w.(*os.File); ok && term.IsTerminal(f.Fd()) {
		if tw, _, err := term.GetSize(f.Fd()); err == nil {
			cols = tw
		}
	}

	eng := engine.New(engine.Options{
		Sink:           streamSink{w},
		Layouts:        layouts,
		HistoryLimit:   cfg.HistoryLimit,
		TabStop:        cfg.TabStop,
		DefaultColumns: cols,
	})

	const id = "stdin"
	for chunk := range source.ReadChunks(r) {
		if rewritten, rest, ok := eng.OnAnnouncement(id, chunk); ok {
			io.WriteString(w, rewritten)
			chunk = rest
		}
		if chunk != "" {
			io.WriteString(w, eng.OnData(id, chunk))
		}
	}
	io.WriteString(w, eng.Flush(id))
	return nil
}

func init() {
	rootCmd.AddCommand(filterCmd)
}

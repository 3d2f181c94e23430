package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pwnmux/pwnmux/internal/source"
	"github.com/pwnmux/pwnmux/internal/tui"
)

var fromStart bool

var watchCmd = &cobra.Command{
	Use:   "watch <[label=]transcript>...",
	Short: "Follow debugger transcript files and replay their context panes",
	Long: `Watch tails one transcript file per debugger pane and shows a pane for
each, kept on a single shared timeline. Views register themselves from
the announcement line in their stream; page keys step the replay
backward and forward across every pane at once.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(os.Stdout.Fd()) {
			return fmt.Errorf("watch needs a terminal; use 'pwnmux filter' in pipelines")
		}

		var tailers []*source.Tailer
		closeAll := func() {
			for _, t := range tailers {
				t.Close()
			}
		}

		var sources []tui.Source
		for _, arg := range args {
			label, path, found := strings.Cut(arg, "=")
			if !found {
				path = arg
				label = filepath.Base(arg)
			}
			t, err := source.NewTailer(path, fromStart)
			if err != nil {
				closeAll()
				return err
			}
			tailers = append(tailers, t)
			sources = append(sources, tui.Source{
				ID:     uuid.NewString(),
				Label:  label,
				Chunks: t.Chunks(),
			})
		}
		defer closeAll()

		return tui.Run(GetConfig(), sources)
	},
}

func init() {
	watchCmd.Flags().BoolVar(&fromStart, "from-start", false,
		"replay transcript content already on disk before following")
	rootCmd.AddCommand(watchCmd)
}

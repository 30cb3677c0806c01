package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/llehouerou/essai/internal/api"
)

// Table provides a simple table formatter.
type Table struct {
	w *tabwriter.Writer
}

// NewTable creates a table writing to stdout.
func NewTable(headers ...string) *Table {
	return NewTableWriter(os.Stdout, headers...)
}

// NewTableWriter creates a table writing to a specific writer.
func NewTableWriter(out io.Writer, headers ...string) *Table {
	t := &Table{w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
	if len(headers) > 0 {
		t.Row(headers...)
	}
	return t
}

// Row adds a row to the table.
func (t *Table) Row(values ...string) {
	_, _ = t.w.Write([]byte(strings.Join(values, "\t") + "\n"))
}

// Flush writes the table output.
func (t *Table) Flush() {
	_ = t.w.Flush()
}

// writeTracks lists tracks with their ids.
func writeTracks(out io.Writer, tracks []api.Track) {
	if len(tracks) == 0 {
		fmt.Fprintln(out, "No tracks.")
		return
	}
	t := NewTableWriter(out, "#", "ID", "TITLE", "ARTIST", "GENRE", "LENGTH")
	for i, tr := range tracks {
		t.Row(fmt.Sprint(i+1), tr.ID, tr.Title, tr.DisplayArtist(), tr.Genre, formatLength(tr.Duration))
	}
	t.Flush()
}

func formatLength(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

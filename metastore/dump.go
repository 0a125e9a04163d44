package metastore

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Dump writes every registered table with its path at the given time.
func (m *Metastore) Dump(w io.Writer, at time.Time) error {
	if _, err := fmt.Fprintf(w, "Metastore <<<%s>>> is serving the following tables\n", m.name); err != nil {
		return err
	}
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Database", "Table", "Path", "Schema"})
	tw.SetAutoWrapText(false)
	tw.SetAutoFormatHeaders(false)
	for dbName, db := range m.Databases() {
		for _, t := range db.Tables() {
			tw.Append([]string{dbName, t.Name(), t.PathAt(at), t.Schema().String()})
		}
	}
	tw.Render()
	return nil
}

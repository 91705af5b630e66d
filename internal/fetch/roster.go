package fetch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// Roster column headers.
const (
	ColumnID   = "Código(Busca Textual)"
	ColumnName = "Nome dos Professores"
)

// ErrRosterColumns reports a roster without the required columns.
var ErrRosterColumns = errors.New("roster is missing required columns")

// Entry is one person to retrieve.
type Entry struct {
	ID   string
	Name string
}

// ReadRoster reads a CSV roster with a header row. Rows without an ID are
// skipped and repeated IDs keep their first row.
func ReadRoster(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrRosterColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("read roster header: %w", err)
	}
	idCol, nameCol := -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch h {
		case ColumnID:
			idCol = i
		case ColumnName:
			nameCol = i
		}
	}
	if idCol < 0 || nameCol < 0 {
		return nil, fmt.Errorf("%w: need %q and %q", ErrRosterColumns, ColumnID, ColumnName)
	}

	var entries []Entry
	seen := make(map[string]bool)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read roster: %w", err)
		}
		if idCol >= len(row) {
			continue
		}
		e := Entry{ID: strings.TrimSpace(row[idCol])}
		if nameCol < len(row) {
			e.Name = strings.TrimSpace(row[nameCol])
		}
		if e.ID == "" {
			continue
		}
		if seen[e.ID] {
			log.Debug().Str("doc", e.ID).Int("line", line).Msg("duplicate roster id ignored")
			continue
		}
		seen[e.ID] = true
		entries = append(entries, e)
	}
	return entries, nil
}

// package formatter exports fetched record sets to CSV, JSON, and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"ttx/internal/models"
)

// Snapshot is the exportable view of one side of a fetch: the records of each
// entity group in dependency order.
type Snapshot struct {
	Tool      string         `json:"tool"`
	FetchedAt time.Time      `json:"fetched_at"`
	Groups    []GroupRecords `json:"groups"`
}

// GroupRecords holds one group's records.
type GroupRecords struct {
	Group   models.EntityGroup `json:"-"`
	Name    string             `json:"group"`
	Records []*models.Record   `json:"-"`
	Rows    []Row              `json:"records"`
}

// Row is the flattened export form of a record.
type Row struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	LinkedID    string `json:"linked_id,omitempty"`
	Included    bool   `json:"included"`
	EntryCount  int    `json:"entry_count,omitempty"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
}

// NewSnapshot builds a Snapshot from per-group record slices, ordered by
// [models.FetchOrder]. Groups with no records are kept so the export shows
// they were fetched and empty.
func NewSnapshot(tool string, fetchedAt time.Time, byGroup map[models.EntityGroup][]*models.Record) *Snapshot {
	s := &Snapshot{Tool: tool, FetchedAt: fetchedAt}
	for _, group := range models.FetchOrder {
		records := byGroup[group]
		gr := GroupRecords{Group: group, Name: group.String(), Records: records}
		for _, rec := range records {
			gr.Rows = append(gr.Rows, rowOf(rec))
		}
		s.Groups = append(s.Groups, gr)
	}
	return s
}

func rowOf(rec *models.Record) Row {
	row := Row{
		ID:          rec.ID,
		Name:        rec.Name,
		Email:       rec.Email,
		WorkspaceID: rec.WorkspaceID,
		LinkedID:    rec.LinkedID,
		Included:    rec.Included,
		EntryCount:  rec.EntryCount,
		Description: rec.Description,
	}
	if !rec.Start.IsZero() {
		row.Start = rec.Start.UTC().Format(time.RFC3339)
	}
	if !rec.End.IsZero() {
		row.End = rec.End.UTC().Format(time.RFC3339)
	}
	return row
}

// ExportToCSV converts a Snapshot to CSV with one row per record across all
// groups, with columns: Group, ID, Name, Email, Workspace, Linked, Included, Entries, Start, End
func ExportToCSV(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Group", "ID", "Name", "Email", "Workspace", "Linked", "Included", "Entries", "Start", "End"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, group := range s.Groups {
		for _, row := range group.Rows {
			record := []string{
				group.Name,
				row.ID,
				row.Name,
				row.Email,
				row.WorkspaceID,
				row.LinkedID,
				strconv.FormatBool(row.Included),
				strconv.Itoa(row.EntryCount),
				row.Start,
				row.End,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a Snapshot to indented JSON.
func ExportToJSON(s *Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// ExportToText converts a Snapshot to a plain text summary: per-group totals
// with the linked and selected counts.
func ExportToText(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Tool: %s\n", s.Tool))
	if !s.FetchedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("Fetched: %s\n", s.FetchedAt.UTC().Format(time.RFC3339)))
	}
	buf.WriteString("\n")

	for _, group := range s.Groups {
		linked, included := 0, 0
		for _, row := range group.Rows {
			if row.LinkedID != "" {
				linked++
			}
			if row.Included {
				included++
			}
		}
		buf.WriteString(fmt.Sprintf("%s: %d (%d linked, %d selected)\n",
			group.Name, len(group.Rows), linked, included))
	}

	return buf.Bytes(), nil
}

// WriteExport writes the snapshot in the given format ("csv", "json", or
// "text") and returns the written path. An empty baseFilepath defaults to the
// tool name.
func WriteExport(s *Snapshot, baseFilepath, format string) (string, error) {
	if baseFilepath == "" {
		baseFilepath = s.Tool
	}

	var (
		data []byte
		err  error
		path string
	)

	switch format {
	case "csv":
		data, err = ExportToCSV(s)
		path = baseFilepath + "_records.csv"
	case "json":
		data, err = ExportToJSON(s)
		path = baseFilepath + "_records.json"
	case "text", "":
		data, err = ExportToText(s)
		path = baseFilepath + "_records.txt"
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

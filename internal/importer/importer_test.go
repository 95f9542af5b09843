package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"keywordpyramid/internal/models"
	"keywordpyramid/internal/testutil"
)

func TestMapHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		want    map[string]int
		wantErr bool
	}{
		{
			name:   "canonical names",
			header: []string{"keyword", "search_volume", "difficulty", "cpc"},
			want:   map[string]int{"keyword": 0, "search_volume": 1, "difficulty": 2, "cpc": 3},
		},
		{
			name:   "aliases",
			header: []string{"Term", "Volume", "KD", "Cost_Per_Click"},
			want:   map[string]int{"keyword": 0, "search_volume": 1, "difficulty": 2, "cpc": 3},
		},
		{
			name:   "query alias with extras",
			header: []string{"query", "clicks", "monthly_volume"},
			want:   map[string]int{"keyword": 0, "search_volume": 2},
		},
		{
			name:    "missing keyword column",
			header:  []string{"volume", "difficulty"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mapHeader(tt.header)
			if tt.wantErr {
				if err == nil {
					t.Fatal("mapHeader() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("mapHeader() error = %v", err)
			}
			for field, pos := range tt.want {
				if got[field] != pos {
					t.Errorf("mapHeader()[%s] = %d, want %d", field, got[field], pos)
				}
			}
		})
	}
}

func TestParseRow(t *testing.T) {
	header := []string{"keyword", "search_volume", "difficulty", "cpc", "serp_features"}
	columns, err := mapHeader(header)
	if err != nil {
		t.Fatalf("mapHeader() error = %v", err)
	}

	t.Run("classifies when no tier given", func(t *testing.T) {
		kw, err := parseRow(header, columns, []string{"Robot Vacuum ", "31000", "60", "1.0", ""})
		if err != nil {
			t.Fatalf("parseRow() error = %v", err)
		}
		if kw.Keyword != "robot vacuum" {
			t.Errorf("keyword = %q, want normalized %q", kw.Keyword, "robot vacuum")
		}
		if kw.PriorityTier == nil || *kw.PriorityTier != models.TierP0 {
			t.Errorf("tier = %v, want computed P0", kw.PriorityTier)
		}
	})

	t.Run("unmapped column lands in metadata", func(t *testing.T) {
		kw, err := parseRow(header, columns, []string{"smart tv", "5000", "", "0.5", "featured_snippet"})
		if err != nil {
			t.Fatalf("parseRow() error = %v", err)
		}
		if kw.Metadata["serp_features"] != "featured_snippet" {
			t.Errorf("metadata = %v, want serp_features preserved", kw.Metadata)
		}
	})

	t.Run("rejects non-numeric volume", func(t *testing.T) {
		if _, err := parseRow(header, columns, []string{"smart tv", "lots", "", "", ""}); err == nil {
			t.Fatal("parseRow() error = nil, want invalid integer error")
		}
	})

	t.Run("rejects empty keyword", func(t *testing.T) {
		if _, err := parseRow(header, columns, []string{"   ", "100", "", "", ""}); err == nil {
			t.Fatal("parseRow() error = nil, want required error")
		}
	})
}

func TestImporterRun(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("bad row does not abort the import", func(t *testing.T) {
		// 100 data rows; row 37 has a garbage volume.
		var sb strings.Builder
		sb.WriteString("keyword,search_volume,difficulty,cpc\n")
		for i := 1; i <= 100; i++ {
			volume := fmt.Sprintf("%d", 1000+i)
			if i == 37 {
				volume = "not-a-number"
			}
			fmt.Fprintf(&sb, "bulk keyword %03d,%s,40,1.2\n", i, volume)
		}

		result, err := New(database).Run(ctx, strings.NewReader(sb.String()), nil)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if result.TotalRows != 100 {
			t.Errorf("TotalRows = %d, want 100", result.TotalRows)
		}
		if result.Imported != 99 {
			t.Errorf("Imported = %d, want 99", result.Imported)
		}
		if len(result.Errors) != 1 {
			t.Fatalf("Errors = %d, want 1", len(result.Errors))
		}
		if result.Errors[0].Row != 37 {
			t.Errorf("error row = %d, want 37", result.Errors[0].Row)
		}
	})

	t.Run("re-import updates instead of duplicating", func(t *testing.T) {
		csvData := "keyword,search_volume\nreimported term,5000\n"
		if _, err := New(database).Run(ctx, strings.NewReader(csvData), nil); err != nil {
			t.Fatalf("Run() first error = %v", err)
		}

		result, err := New(database).Run(ctx, strings.NewReader("keyword,search_volume\nreimported term,6000\n"), nil)
		if err != nil {
			t.Fatalf("Run() second error = %v", err)
		}
		if result.Imported != 0 || result.Updated != 1 {
			t.Errorf("Imported = %d, Updated = %d, want 0/1", result.Imported, result.Updated)
		}
		if result.HasErrors() {
			t.Errorf("HasErrors() = true for a clean run: %+v", result.Errors)
		}
	})

	t.Run("progress per flushed batch", func(t *testing.T) {
		var sb strings.Builder
		sb.WriteString("keyword,search_volume\n")
		for i := 1; i <= 25; i++ {
			fmt.Fprintf(&sb, "progress keyword %02d,%d\n", i, 100*i)
		}

		var snapshots []models.ImportProgress
		im := NewWithBatchSize(database, 10)
		result, err := im.Run(ctx, strings.NewReader(sb.String()), func(p models.ImportProgress) {
			snapshots = append(snapshots, p)
		})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if result.Imported != 25 {
			t.Errorf("Imported = %d, want 25", result.Imported)
		}
		// Two full batches plus the final partial flush.
		if len(snapshots) != 3 {
			t.Fatalf("progress calls = %d, want 3", len(snapshots))
		}
		if snapshots[0].Processed != 10 || snapshots[1].Processed != 20 || snapshots[2].Processed != 25 {
			t.Errorf("progress processed = %v, want 10, 20, 25", snapshots)
		}
	})

	t.Run("empty file is a clean no-op", func(t *testing.T) {
		result, err := New(database).Run(ctx, strings.NewReader("keyword,search_volume\n"), nil)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if result.TotalRows != 0 || result.Imported != 0 || len(result.Errors) != 0 {
			t.Errorf("result = %+v, want empty", result)
		}
	})

	t.Run("header without keyword column fails", func(t *testing.T) {
		if _, err := New(database).Run(ctx, strings.NewReader("volume,cpc\n100,1\n"), nil); err == nil {
			t.Fatal("Run() error = nil, want header error")
		}
	})
}

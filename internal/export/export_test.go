package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"nutriplan/internal/blob"
	"nutriplan/internal/core"
	"nutriplan/pkg/domain"
)

func sampleLogs() []core.DatedLog {
	return []core.DatedLog{
		{Date: "2025-03-13", Log: domain.DailyLog{
			TotalCalories: 450, TotalProtein: 30, TotalCarbs: 12, TotalFat: 20,
			Meals: []domain.FoodEntry{
				{ID: "a", Name: "Omelette, cheese", Calories: 450, Protein: domain.Float(30), Carbs: domain.Float(12), Fat: domain.Float(20), Time: "08:00", MealType: domain.MealBreakfast},
			},
		}},
		{Date: "2025-03-14", Log: domain.DailyLog{
			TotalCalories: 95.5,
			Meals: []domain.FoodEntry{
				{ID: "b", Name: "Apple", Calories: 95.5, Time: "10:30", MealType: domain.MealSnack},
			},
		}},
	}
}

var exportTime = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func TestLogsToCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := LogsToCSV(&buf, sampleLogs()); err != nil {
		t.Fatalf("LogsToCSV: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "Date" || records[0][4] != "Calories" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][3] != "Omelette, cheese" || records[1][5] != "30" {
		t.Fatalf("unexpected first row: %v", records[1])
	}
	if records[2][4] != "95.5" || records[2][5] != "" || records[2][2] != "snack" {
		t.Fatalf("unexpected second row: %v", records[2])
	}
}

func TestLogsToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := LogsToJSON(&buf, sampleLogs(), exportTime); err != nil {
		t.Fatalf("LogsToJSON: %v", err)
	}
	var doc struct {
		ExportedAt string `json:"exported_at"`
		Count      int    `json:"count"`
		Totals     struct {
			Calories float64 `json:"calories"`
		} `json:"totals"`
		Days []core.DatedLog `json:"days"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.ExportedAt != "2025-03-15T12:00:00Z" || doc.Count != 2 || doc.Totals.Calories != 545.5 {
		t.Fatalf("unexpected export header: %+v", doc)
	}
	if doc.Days[1].Log.Meals[0].Name != "Apple" {
		t.Fatalf("unexpected days: %+v", doc.Days)
	}

	buf.Reset()
	if err := LogsToJSON(&buf, nil, exportTime); err != nil {
		t.Fatalf("empty export: %v", err)
	}
	if !strings.Contains(buf.String(), `"days": []`) {
		t.Fatalf("empty export should list no days: %s", buf.String())
	}
}

func TestGroceryExports(t *testing.T) {
	items := []domain.GroceryItem{
		{ID: "1", Name: "flour", Category: "Pantry", Quantity: domain.Float(3), Unit: "cup"},
		{ID: "2", Name: "salt", Category: "Spices", Checked: true},
	}
	var buf bytes.Buffer
	if err := WriteGrocery(&buf, FormatCSV, items, exportTime); err != nil {
		t.Fatalf("csv: %v", err)
	}
	want := "Category,Name,Quantity,Unit,Checked\nPantry,flour,3,cup,false\nSpices,salt,,,true\n"
	if buf.String() != want {
		t.Fatalf("csv = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := WriteGrocery(&buf, FormatJSON, items, exportTime); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(buf.String(), `"count": 2`) {
		t.Fatalf("unexpected json: %s", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"csv", "json"} {
		if _, err := ParseFormat(in); err != nil {
			t.Fatalf("ParseFormat(%q): %v", in, err)
		}
	}
	if _, err := ParseFormat("xlsx"); err == nil {
		t.Fatalf("expected error for xlsx")
	}
}

func TestPublishLogs(t *testing.T) {
	ctx := context.Background()
	fsStore, err := blob.NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}
	cases := []struct {
		name      string
		store     blob.Store
		urlPrefix string
	}{
		{"memory", blob.NewMemory(), ""},
		{"fs", fsStore, "file://"},
		{"s3", blob.NewMockS3ForTests(), "http"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPublisher(tc.store, "exports", 5*time.Minute)
			p.now = func() time.Time { return exportTime }

			pub, err := p.PublishLogs(ctx, FormatCSV, "2025-03-13", "2025-03-14", sampleLogs())
			if err != nil {
				t.Fatalf("publish: %v", err)
			}
			if pub.Info.Key != "exports/food-log_2025-03-13_2025-03-14.csv" {
				t.Fatalf("unexpected key %q", pub.Info.Key)
			}
			if tc.urlPrefix == "" && pub.URL != "" {
				t.Fatalf("expected no url, got %q", pub.URL)
			}
			if !strings.HasPrefix(pub.URL, tc.urlPrefix) {
				t.Fatalf("url %q lacks prefix %q", pub.URL, tc.urlPrefix)
			}

			// Re-publishing the same range replaces the object.
			if _, err := p.PublishLogs(ctx, FormatCSV, "2025-03-13", "2025-03-14", sampleLogs()[:1]); err != nil {
				t.Fatalf("republish: %v", err)
			}
			_, rc, err := tc.store.Get(ctx, pub.Info.Key)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			defer rc.Close()
			body, _ := io.ReadAll(rc)
			if strings.Count(string(body), "\n") != 2 {
				t.Fatalf("expected header + 1 row after republish, got %q", body)
			}
		})
	}
}

func TestPublishGrocery(t *testing.T) {
	store := blob.NewMemory()
	p := NewPublisher(store, "out", 0)
	pub, err := p.PublishGrocery(context.Background(), FormatJSON, nil)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if pub.Info.Key != "out/grocery-list.json" || pub.Info.ContentType != "application/json" {
		t.Fatalf("unexpected info: %+v", pub.Info)
	}
}

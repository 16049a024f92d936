package testutil

import (
	"context"
	"testing"
)

func TestStubDBUpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	db, conn := NewStubDB()
	t.Cleanup(func() { _ = db.Close() })

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	upsert := `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`
	for _, v := range []string{"one", "two"} {
		if _, err := db.ExecContext(ctx, upsert, "food", []byte(v)); err != nil {
			t.Fatalf("exec: %v", err)
		}
	}
	if _, err := db.ExecContext(ctx, upsert, "grocery", []byte("g")); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if got := len(conn.Rows("state")); got != 2 {
		t.Fatalf("expected 2 rows after upsert, got %d", got)
	}
	var payload []byte
	if err := db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = $1`, "food").Scan(&payload); err != nil {
		t.Fatalf("query: %v", err)
	}
	if string(payload) != "two" {
		t.Fatalf("expected latest payload, got %q", payload)
	}
	conn.FailQuery = true
	if err := db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = $1`, "food").Scan(&payload); err == nil {
		t.Fatalf("expected query failure")
	}
}

package database_test

import (
	"context"
	"testing"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/VastSea0/italiano-sub000/internal/infrastructure/database"
	"github.com/VastSea0/italiano-sub000/internal/infrastructure/database/dbtest"
)

func TestMigrateIsIdempotent(t *testing.T) {
	drv := dbtest.Open(t, dbtest.DSN(t, "migrate"))
	ctx := context.Background()

	if err := database.Migrate(ctx, drv); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	for _, table := range database.Tables {
		query, args := entsql.Dialect(drv.Dialect()).
			Select(entsql.Count("*")).
			From(entsql.Table(table.Name)).
			Query()
		rows := &entsql.Rows{}
		if err := drv.Query(ctx, query, args, rows); err != nil {
			t.Fatalf("count %s: %v", table.Name, err)
		}
		var n int
		if !rows.Next() {
			rows.Close()
			t.Fatalf("count %s returned no rows", table.Name)
		}
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			t.Fatalf("scan count %s: %v", table.Name, err)
		}
		rows.Close()
		if n != 0 {
			t.Fatalf("expected empty %s table, got %d rows", table.Name, n)
		}
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, _, err := database.Open("oracle", "dsn", false, nil); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

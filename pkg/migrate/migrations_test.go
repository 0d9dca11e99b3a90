package migrate_test

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/angelmondragon/boutique-backend/pkg/migrate"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	if err := migrate.ValidateFS(migrate.Migrations, migrate.EmbeddedDir); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
}

func TestMigrationsDeclareCheckoutConstraints(t *testing.T) {
	var all strings.Builder
	err := fs.WalkDir(migrate.Migrations, migrate.EmbeddedDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := fs.ReadFile(migrate.Migrations, p)
		if err != nil {
			return err
		}
		all.Write(b)
		return nil
	})
	if err != nil {
		t.Fatalf("walk migrations: %v", err)
	}
	content := all.String()

	checks := []string{
		"CREATE TABLE IF NOT EXISTS profiles",
		"CREATE TABLE IF NOT EXISTS addresses",
		"CREATE TABLE IF NOT EXISTS cart_items",
		"CONSTRAINT uniq_cart_items_user_product_variation UNIQUE (user_id, product_id, variation_id)",
		"CREATE TABLE IF NOT EXISTS coupon_types",
		"CREATE TABLE IF NOT EXISTS user_coupons",
		"CONSTRAINT uniq_orders_order_number UNIQUE (order_number)",
		"CREATE TABLE IF NOT EXISTS order_items",
		"CREATE UNIQUE INDEX IF NOT EXISTS uniq_delivery_batches_pending_user",
		"WHERE status = 'pending'",
		"CREATE TABLE IF NOT EXISTS delivery_batch_items",
		"CREATE TABLE IF NOT EXISTS wheel_game_settings",
		"CREATE TABLE IF NOT EXISTS wheel_game_plays",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Gift Wrap")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_gift_wrap.sql") {
		t.Fatalf("unexpected migration path %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "  "); err == nil {
		t.Fatalf("expected error for blank name")
	}
}

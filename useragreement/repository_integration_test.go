package useragreement

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"termsync/test/infra"
)

// TestUnmetDependencies_Integration verifies the dependency gate against a live
// PostgreSQL: only direct, unagreed dependencies block, one hop deep.
func TestUnmetDependencies_Integration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is empty; set it to a live PostgreSQL to run integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, teardown, err := infra.ApplyMigrations(ctx, dsn, true)
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(func() {
		pool.Close()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel2()
		_ = teardown(ctx2)
	})

	// Chain: 5003 depends on 5002, 5002 depends on 5001.
	seed := []string{
		`INSERT INTO terms_of_use (terms_of_use_id, terms_of_use_type_id, title, terms_of_use_agreeability_type_id)
		 VALUES (5001, 1, 'Base', 3), (5002, 1, 'Middle', 3), (5003, 1, 'Top', 3)`,
		`INSERT INTO terms_of_use_dependency (dependent_terms_of_use_id, dependency_terms_of_use_id)
		 VALUES (5002, 5001), (5003, 5002)`,
	}
	for _, stmt := range seed {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	repo := NewRepository()

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback(ctx)

	unmet, err := repo.UnmetDependencies(ctx, tx, 42, 5002)
	if err != nil {
		t.Fatalf("unmet dependencies: %v", err)
	}
	if !reflect.DeepEqual(unmet, []int64{5001}) {
		t.Errorf("expected direct dependency 5001 unmet, got %v", unmet)
	}

	// Agreeing to the direct dependency of 5003 clears its gate even though the
	// transitive dependency 5001 is still unagreed.
	if err := repo.InsertAgreement(ctx, tx, 42, 5002, time.Now().UTC()); err != nil {
		t.Fatalf("insert agreement: %v", err)
	}
	unmet, err = repo.UnmetDependencies(ctx, tx, 42, 5003)
	if err != nil {
		t.Fatalf("unmet dependencies after agreement: %v", err)
	}
	if len(unmet) != 0 {
		t.Errorf("dependency check must be one hop only, got %v", unmet)
	}

	// A different user gains nothing from user 42's agreement.
	unmet, err = repo.UnmetDependencies(ctx, tx, 43, 5003)
	if err != nil {
		t.Fatalf("unmet dependencies for other user: %v", err)
	}
	if !reflect.DeepEqual(unmet, []int64{5002}) {
		t.Errorf("expected 5002 unmet for user 43, got %v", unmet)
	}
}

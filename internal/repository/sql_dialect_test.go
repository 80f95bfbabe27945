package repository

import "testing"

func TestDayExprByDialect(t *testing.T) {
	if got := dayExprByDialect("sqlite", "created_at"); got != "CAST(date(created_at) AS TEXT)" {
		t.Fatalf("sqlite day expr mismatch, got %s", got)
	}
	if got := dayExprByDialect("postgres", "orders.created_at"); got != "to_char(orders.created_at, 'YYYY-MM-DD')" {
		t.Fatalf("postgres day expr mismatch, got %s", got)
	}
}

func TestBuildLikeConditionByDialect(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("sqlite", []string{"order_no", " ", "customer_name"})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	if condition != "(order_no LIKE ? OR customer_name LIKE ?)" {
		t.Fatalf("unexpected sqlite condition: %s", condition)
	}

	condition, _ = buildLikeConditionByDialect("postgresql", []string{"name"})
	if condition != "(name ILIKE ?)" {
		t.Fatalf("unexpected postgres condition: %s", condition)
	}

	if condition, argCount = buildLikeConditionByDialect("sqlite", nil); condition != "" || argCount != 0 {
		t.Fatalf("empty columns should produce empty condition")
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%test%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%test%" {
			t.Fatalf("args[%d] want %%test%% got %v", idx, arg)
		}
	}
}

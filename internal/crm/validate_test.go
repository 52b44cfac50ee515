package crm

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		phone string
		want  bool
	}{
		{"", true}, // optional field
		{"+1234567890", true},
		{"1234567890", true},
		{"123-456-7890", true},
		{"(123) 456-7890", true},
		{"(123)456-7890", true},
		{"+123456789012345", true},
		{"12345", false},
		{"abc-def-ghij", false},
		{"123-45-67890", false},
		{"+1234567890123456", false}, // 16 digits, too long
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			t.Parallel()
			if got := ValidPhone(tt.phone); got != tt.want {
				t.Errorf("ValidPhone(%q) = %v, want %v", tt.phone, got, tt.want)
			}
		})
	}
}

func TestValidateCustomer(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		if errs := ValidateCustomer("Alice", "alice@example.com", "+1234567890"); len(errs) != 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()
		errs := ValidateCustomer("   ", "alice@example.com", "")
		if len(errs) != 1 || !strings.Contains(errs[0], "Name is required") {
			t.Errorf("errors = %v, want name error", errs)
		}
	})

	t.Run("missing email", func(t *testing.T) {
		t.Parallel()
		errs := ValidateCustomer("Alice", "", "")
		if len(errs) != 1 || errs[0] != "Email is required" {
			t.Errorf("errors = %v, want email required", errs)
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		t.Parallel()
		errs := ValidateCustomer("Alice", "not-an-email", "")
		if len(errs) != 1 || !strings.Contains(errs[0], "Invalid email format") {
			t.Errorf("errors = %v, want invalid email", errs)
		}
	})

	t.Run("invalid phone", func(t *testing.T) {
		t.Parallel()
		errs := ValidateCustomer("Alice", "alice@example.com", "12-34")
		if len(errs) != 1 || !strings.Contains(errs[0], "Invalid phone format") {
			t.Errorf("errors = %v, want invalid phone", errs)
		}
	})

	t.Run("accumulates all problems", func(t *testing.T) {
		t.Parallel()
		errs := ValidateCustomer("", "bad", "bad")
		if len(errs) != 3 {
			t.Errorf("got %d errors, want 3: %v", len(errs), errs)
		}
	})
}

func TestValidateProduct(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		if errs := ValidateProduct("Laptop", decimal.NewFromFloat(999.99), 4); len(errs) != 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()
		errs := ValidateProduct("", decimal.NewFromInt(1), 0)
		if len(errs) != 1 || !strings.Contains(errs[0], "Product name is required") {
			t.Errorf("errors = %v, want name error", errs)
		}
	})

	t.Run("zero price", func(t *testing.T) {
		t.Parallel()
		errs := ValidateProduct("Laptop", decimal.Zero, 0)
		if len(errs) != 1 || !strings.Contains(errs[0], "Price must be positive") {
			t.Errorf("errors = %v, want price error", errs)
		}
	})

	t.Run("negative stock", func(t *testing.T) {
		t.Parallel()
		errs := ValidateProduct("Laptop", decimal.NewFromInt(1), -1)
		if len(errs) != 1 || !strings.Contains(errs[0], "Stock cannot be negative") {
			t.Errorf("errors = %v, want stock error", errs)
		}
	})
}

func TestNormalizeCustomer(t *testing.T) {
	t.Parallel()

	c := NormalizeCustomer(Customer{
		Name:  "  Alice  ",
		Email: " ALICE@Example.COM ",
		Phone: " +1234567890 ",
	})

	if c.Name != "Alice" {
		t.Errorf("Name = %q", c.Name)
	}
	if c.Email != "alice@example.com" {
		t.Errorf("Email = %q", c.Email)
	}
	if c.Phone != "+1234567890" {
		t.Errorf("Phone = %q", c.Phone)
	}
}

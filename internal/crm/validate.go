package crm

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// phonePattern accepts +1234567890, 123-456-7890, (123) 456-7890, or 1234567890.
var phonePattern = regexp.MustCompile(`^(?:\+?\d{10,15}|\(?\d{3}\)?[-\s]?\d{3}[-\s]?\d{4})$`)

// ValidPhone reports whether phone matches an accepted format.
// An empty phone is valid (the field is optional).
func ValidPhone(phone string) bool {
	if phone == "" {
		return true
	}
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

// ValidateCustomer checks name, email, and phone and returns one message per
// problem. An empty slice means the input is acceptable.
func ValidateCustomer(name, email, phone string) []string {
	var errs []string

	if strings.TrimSpace(name) == "" {
		errs = append(errs, "Name is required and cannot be empty")
	}

	if email == "" {
		errs = append(errs, "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs = append(errs, fmt.Sprintf("Invalid email format: %s", email))
	}

	if phone != "" && !ValidPhone(phone) {
		errs = append(errs, fmt.Sprintf(
			"Invalid phone format: %s. Use formats like +1234567890, 123-456-7890, (123) 456-7890, or 1234567890",
			phone,
		))
	}

	return errs
}

// ValidateProduct checks name, price, and stock and returns one message per
// problem. Price must be strictly positive; stock must not be negative.
func ValidateProduct(name string, price decimal.Decimal, stock int) []string {
	var errs []string

	if strings.TrimSpace(name) == "" {
		errs = append(errs, "Product name is required and cannot be empty")
	}

	if price.Sign() <= 0 {
		errs = append(errs, fmt.Sprintf("Price must be positive, got: %s", price))
	}

	if stock < 0 {
		errs = append(errs, fmt.Sprintf("Stock cannot be negative, got: %d", stock))
	}

	return errs
}

// NormalizeCustomer trims the name and phone and lowercases the email,
// mirroring what the create mutations persist.
func NormalizeCustomer(c Customer) Customer {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	return c
}

package catalog

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Draft is an in-memory, not-yet-persisted product. Its image list fills up
// asynchronously from the pipeline while the operator edits the other fields;
// Submit is only valid once the pipeline has drained.
type Draft struct {
	ID       uuid.UUID
	Images   *ImageList
	Pipeline *Pipeline

	mu          sync.Mutex
	title       string
	description string
	price       decimal.Decimal
	categoryID  *uuid.UUID
	createdAt   time.Time
	touchedAt   time.Time
}

// SetFields updates the editable product fields. Values are validated at
// submit time, not here, so partially filled forms can be saved freely.
func (d *Draft) SetFields(title, description string, price decimal.Decimal, categoryID *uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.title = title
	d.description = description
	d.price = price
	d.categoryID = categoryID
	d.touchedAt = time.Now()
}

// Fields returns the current editable values.
func (d *Draft) Fields() (title, description string, price decimal.Decimal, categoryID *uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title, d.description, d.price, d.categoryID
}

// CreatedAt reports when the draft was opened.
func (d *Draft) CreatedAt() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.createdAt
}

// Validate applies the submit-time rules: title and description non-empty,
// price strictly positive. An empty image list is allowed.
func (d *Draft) Validate() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if strings.TrimSpace(d.title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(d.description) == "" {
		return &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if !d.price.IsPositive() {
		return &ValidationError{Field: "price", Reason: "must be a positive number"}
	}
	return nil
}

func (d *Draft) touch() {
	d.mu.Lock()
	d.touchedAt = time.Now()
	d.mu.Unlock()
}

// Package migration runs the SQL product store's schema migrations and
// records each applied one in schema_migrations.
//
// Migrations register themselves from database/migrations:
//
//	func init() {
//	    migration.Register("20260101000000_create_products_table", &CreateProductsTable{})
//	}
//
// and are applied from the CLI:
//
//	catalog migrate             // run all pending
//	catalog migrate:rollback    // roll back the last batch
//	catalog migrate:status
package migration

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/catalog/pkg/logger"
)

// Migration is implemented by every schema change.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

type migrationRecord struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (migrationRecord) TableName() string { return "schema_migrations" }

type entry struct {
	name string
	m    Migration
}

// Registry is an ordered set of named migrations.
type Registry struct {
	entries []entry
}

// Add registers m under name. Names are timestamp-prefixed and applied in
// lexical order.
func (reg *Registry) Add(name string, m Migration) {
	reg.entries = append(reg.entries, entry{name: name, m: m})
}

func (reg *Registry) sorted() []entry {
	out := append([]entry(nil), reg.entries...)
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func (reg *Registry) lookup(name string) (Migration, bool) {
	for _, e := range reg.entries {
		if e.name == name {
			return e.m, true
		}
	}
	return nil, false
}

// Default holds the migrations registered with Register.
var Default = &Registry{}

// Register adds m to Default. Call it from init().
func Register(name string, m Migration) {
	Default.Add(name, m)
}

// Status describes one registered migration.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

// Runner applies a Registry to a database.
type Runner struct {
	db  *gorm.DB
	reg *Registry
	out io.Writer
}

// New returns a Runner over the Default registry. Progress goes to stdout
// unless redirected with SetOutput.
func New(db *gorm.DB) *Runner {
	return NewWithRegistry(db, Default)
}

func NewWithRegistry(db *gorm.DB, reg *Registry) *Runner {
	return &Runner{db: db, reg: reg, out: os.Stdout}
}

func (r *Runner) SetOutput(w io.Writer) { r.out = w }

func (r *Runner) ensureTable(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&migrationRecord{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) applied(ctx context.Context) (map[string]migrationRecord, error) {
	var ran []migrationRecord
	if err := r.db.WithContext(ctx).Find(&ran).Error; err != nil {
		return nil, fmt.Errorf("migration: load applied: %w", err)
	}
	out := make(map[string]migrationRecord, len(ran))
	for _, rec := range ran {
		out[rec.Name] = rec
	}
	return out, nil
}

// Pending returns the names of migrations that have not run yet, in the
// order Run would apply them.
func (r *Runner) Pending(ctx context.Context) ([]string, error) {
	statuses, err := r.Statuses(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, s := range statuses {
		if !s.Ran {
			names = append(names, s.Name)
		}
	}
	return names, nil
}

// Run applies every pending migration as one batch.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.ensureTable(ctx); err != nil {
		return err
	}
	applied, err := r.applied(ctx)
	if err != nil {
		return err
	}

	var pending []entry
	for _, e := range r.reg.sorted() {
		if _, ok := applied[e.name]; !ok {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return nil
	}

	batch := r.lastBatch(ctx) + 1
	db := r.db.WithContext(ctx)
	for _, e := range pending {
		fmt.Fprintf(r.out, "  ▶ Migrating: %s\n", e.name)
		if err := e.m.Up(db); err != nil {
			return fmt.Errorf("migration: %s up: %w", e.name, err)
		}
		if err := db.Create(&migrationRecord{Name: e.name, Batch: batch}).Error; err != nil {
			return fmt.Errorf("migration: record %s: %w", e.name, err)
		}
		fmt.Fprintf(r.out, "  ✅ Migrated:  %s\n", e.name)
	}

	logger.Info("migration: done", "ran", len(pending), "batch", batch)
	return nil
}

// Rollback reverses the most recent batch, newest first.
func (r *Runner) Rollback(ctx context.Context) error {
	if err := r.ensureTable(ctx); err != nil {
		return err
	}
	last := r.lastBatch(ctx)
	if last == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return nil
	}

	db := r.db.WithContext(ctx)
	var records []migrationRecord
	if err := db.Where("batch = ?", last).Order("id desc").Find(&records).Error; err != nil {
		return fmt.Errorf("migration: load batch %d: %w", last, err)
	}

	for _, rec := range records {
		m, ok := r.reg.lookup(rec.Name)
		if !ok {
			return fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}
		fmt.Fprintf(r.out, "  ◀ Rolling back: %s\n", rec.Name)
		if err := m.Down(db); err != nil {
			return fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if err := db.Delete(&rec).Error; err != nil {
			return fmt.Errorf("migration: forget %s: %w", rec.Name, err)
		}
		fmt.Fprintf(r.out, "  ✅ Rolled back:  %s\n", rec.Name)
	}

	logger.Info("migration: rolled back", "batch", last, "count", len(records))
	return nil
}

// Statuses reports every registered migration in apply order.
func (r *Runner) Statuses(ctx context.Context) ([]Status, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	applied, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}

	entries := r.reg.sorted()
	out := make([]Status, len(entries))
	for i, e := range entries {
		rec, ok := applied[e.name]
		out[i] = Status{Name: e.name, Ran: ok, Batch: rec.Batch}
	}
	return out, nil
}

// PrintStatus writes the Statuses table to the runner's output.
func (r *Runner) PrintStatus(ctx context.Context) error {
	statuses, err := r.Statuses(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "%-60s  %-8s  %s\n", "Migration", "Status", "Batch")
	fmt.Fprintln(r.out, strings.Repeat("-", 80))
	for _, s := range statuses {
		if s.Ran {
			fmt.Fprintf(r.out, "%-60s  %-8s  %d\n", s.Name, "Ran", s.Batch)
		} else {
			fmt.Fprintf(r.out, "%-60s  %-8s  -\n", s.Name, "Pending")
		}
	}
	return nil
}

func (r *Runner) lastBatch(ctx context.Context) int {
	var last *int
	r.db.WithContext(ctx).Model(&migrationRecord{}).Select("MAX(batch)").Scan(&last)
	if last == nil {
		return 0
	}
	return *last
}

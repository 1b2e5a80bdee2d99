package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxFunc runs inside a transaction with repositories bound to it.
type TxFunc func(ctx context.Context, tx *Repositories) error

// Repositories groups every store so one transaction can span several of them.
type Repositories struct {
	db *gorm.DB

	Users      UserRepository
	Ledger     LedgerRepository
	Experience ExperienceRepository
	Attributes AttributeRepository
	Resources  ResourceRepository
	Categories CategoryRepository
	Tasks      TaskRepository
	Purchases  PurchaseRepository
}

// New builds GORM-backed repositories on db.
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:         db,
		Users:      NewUserRepository(db),
		Ledger:     NewLedgerRepository(db),
		Experience: NewExperienceRepository(db),
		Attributes: NewAttributeRepository(db),
		Resources:  NewResourceRepository(db),
		Categories: NewCategoryRepository(db),
		Tasks:      NewTaskRepository(db),
		Purchases:  NewPurchaseRepository(db),
	}
}

// WithTx rebinds every repository to tx.
func (r *Repositories) WithTx(tx *gorm.DB) *Repositories {
	return &Repositories{
		db:         tx,
		Users:      r.Users.WithTx(tx),
		Ledger:     r.Ledger.WithTx(tx),
		Experience: r.Experience.WithTx(tx),
		Attributes: r.Attributes.WithTx(tx),
		Resources:  r.Resources.WithTx(tx),
		Categories: r.Categories.WithTx(tx),
		Tasks:      r.Tasks.WithTx(tx),
		Purchases:  r.Purchases.WithTx(tx),
	}
}

// WithTransaction executes fn within a database transaction. When r is already
// bound to a transaction, fn runs inside a savepoint and its failure only rolls
// back its own writes.
func (r *Repositories) WithTransaction(ctx context.Context, fn TxFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, r.WithTx(tx))
	})
}

package services

import (
	"github.com/SscSPs/terminal_banking/internal/core/ports/events"
	portsrepo "github.com/SscSPs/terminal_banking/internal/core/ports/repositories"
)

// Container holds all the services and manages their dependencies
type Container struct {
	Ledger *LedgerService
	Users  *UserService
}

// NewContainer wires the services on top of one ledger store.
func NewContainer(store portsrepo.LedgerStore, publisher events.Publisher, bcryptCost int) *Container {
	ledger := NewLedgerService(store, WithPublisher(publisher))
	return &Container{
		Ledger: ledger,
		Users:  NewUserService(store, ledger, WithBcryptCost(bcryptCost)),
	}
}

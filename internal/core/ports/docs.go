// Package ports defines the contracts between the application core and its
// adapters: transaction-bound repositories, the unit of work that scopes them,
// and the dispatcher that carries transition side effects out of the process.
package ports

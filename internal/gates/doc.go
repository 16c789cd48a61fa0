// Package gates runs pre-promotion quality checks against a project
// checkout: TypeScript typechecking, test execution, and blast-radius
// reporting over the dependency graph. run_gates is invoked by the
// memory governance promote workflow before a quarantined memory is
// accepted as durable.
package gates

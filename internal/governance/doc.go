// Package governance promotes quarantined memories to durable status
// (optionally gated on quality checks) and rejects them outright. It
// sits on top of internal/memory and internal/gates.
package governance

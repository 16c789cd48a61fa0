// Package memory stores and recalls durable and quarantined memories:
// decisions, insights, context notes, todos, conversation summaries, and
// general notes, kept as vector points in a project's memory and
// memory_pending collections. Ingest routes to quarantine whenever the
// caller-supplied source starts with "auto_"; everything else lands
// directly in the durable collection.
package memory

// Package sync implements the batch orchestrator that pulls campaign data
// from the outreach providers into the unified store.
//
// A sync run is resumable: the campaign list is snapshotted into the
// connection's sync_progress on first fetch, and the loop walks it from
// campaign_index under a wall-clock budget sized to the platform's function
// timeout. When the budget runs out mid-list, the cursor is persisted, the
// status goes to partial, and the orchestrator fires a request to itself for
// the next batch. Campaign-scoped failures are accumulated into
// progress.errors and never abort the run; only auth, list-fetch, and
// batch-cap failures are fatal.
//
// At most one run is live per (workspace, provider), enforced by a
// distributed lock plus a heartbeat check on the stored progress.
package sync

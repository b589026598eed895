// Package pipeline orchestrates the round-based crawl loop over the
// durable queues and sets.
//
// Each round executes three phases in strict sequence, never interleaved:
//
//	FETCH     drain the frontier queue through the fetch engine; raw links
//	          go to the discovered queue, raw entities to the entity queue
//	DEDUP     drain the discovered queue; filter against the visited set;
//	          survivors feed the visited set and the frontier
//	AGGREGATE drain the entity queue; filter per category against that
//	          category's result set; survivors extend the result set
//
// Discovered links feed back into the frontier, so the pipeline is a
// cyclic feedback loop rather than a one-shot transform. Every queue and
// set mutation is its own committed transaction: aborting mid-round keeps
// already-committed progress, and not-yet-dequeued batches remain queued
// for the next run. Restarting against the same root directory resumes
// from exactly the persisted state.
//
// Design decision: each phase drains its queue to empty before the next
// phase starts, modeled as an explicit state machine rather than nested
// loops. This keeps per-round behavior deterministic and testable.
package pipeline

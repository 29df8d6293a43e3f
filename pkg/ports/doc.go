/*
Package ports defines the driven ports (interfaces) of Canvas.

These interfaces stand in for the host content framework, so the validators
and resolvers can run against in-memory fixtures, files, Redis, or a real
CMS bridge.

# Key Interfaces

  - ComponentDefinitionProvider: loads component definitions and their versions.
  - HostEntity / HostProvider: the entity or config object owning a tree.
  - DraftStore: persists auto-save drafts.
  - DistributedLocker: cross-replica locking for draft writes.
*/
package ports

/*
Package domain contains the core models of the Canvas page builder.

It is kept free of I/O and persistence; adapters in pkg/adapters provide
those through the interfaces in pkg/ports.

# Key Entities

  - ComponentTree / ComponentTreeItem: a flat, UUID-keyed forest of component
    instances linked by parent UUID and slot name.
  - ComponentDefinition / ComponentVersion: a usable component with its active
    and past immutable versions (metadata, prop schemas, slots, prop field
    definitions).
  - PropSource: the tagged representation of a single input (static, dynamic,
    adapted, default-relative-url, host-entity-url).
*/
package domain

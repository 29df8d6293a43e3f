/*
Package autosave keeps unpublished component tree drafts per host.

Drafts are stored collapsed and hashed, so saving an unchanged tree is a
no-op. Publishing validates the draft, writes it to its host and removes
it; a draft that fails validation is kept together with the violations.

Access to a host's draft is serialised by reference-counted per-key
mutexes, optionally combined with a ports.DistributedLocker for
deployments with several replicas.
*/
package autosave

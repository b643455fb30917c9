/*
Package domain contains the core types of the simple shapes dataset.

It is kept free of I/O: the concrete modality sources live in package source,
and the adapters in pkg/adapters.

# Key Entities

  - DomainDesc: a (base, kind) pair identifying one modality representation.
  - GroupKey: an unordered set of domain identifiers that must be index-aligned.
  - Record: one synchronized sample, keyed by domain identifier.
  - Assignment: the serializable result of a partitioning request.
  - Attribute, Choice, RawText, Text, Latent, Image: per-domain payloads.
*/
package domain

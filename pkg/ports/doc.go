/*
Package ports defines the interfaces between the dataset core and its
collaborators.

# Key Interfaces

  - Source: random access to the examples of one domain (images, latents, attributes, text).
  - Transform: per-domain pure function applied to payloads.
  - AssignmentStore: persistence for partitioning results (Memory, Redis).
  - Locker: per-key mutual exclusion around assignment computation (Memory, Redis).

Contract suites in ports/tests (RunSourceContract, RunAssignmentStoreContract,
RunLockerContract) let every implementation be checked against the same
expectations.
*/
package ports

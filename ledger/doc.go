/*
Package ledger implements the account based ledger that executes programs.

Transactions are a list of instructions signed by every account that is
marked as a signer. The ledger executes one transaction at a time. All
accounts referenced by a transaction are loaded into a working set and
handed to programs as zkescrow.AccountInfo handles. A program may call
another program (see zkescrow.Runtime), passing along a subset of its
accounts and privileges.

After every program returns, the ledger verifies that

  - only writable accounts were changed,
  - only the owner debited lamports or modified data,
  - only the owner reassigned an account, and only with zeroed data,
  - executable accounts were not changed,
  - the sum of lamports did not change.

Any error aborts the transaction and the working set is dropped. Otherwise
all changed accounts are written in a single cache wrap.
*/
package ledger

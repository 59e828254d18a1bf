/*
Package zkescrow defines the primitives shared by the ledger runtime and the
programs executed by it: addresses and their derivation, accounts passed to
programs as capability handles, instructions, the Program and Runtime
interfaces, and the key value store interfaces used for persistence.

Every piece of persisted state is an account identified by an Address. A
program is never trusted with an address it was simply given. Program owned
storage lives at addresses derived from seeds (see FindProgramAddress), and a
program must recompute that address before it reads or writes the account.

We pass context.Context from the ledger down to every program. The ledger
stores the current slot and a logger in it, see WithSlot and WithLogger.
*/
package zkescrow

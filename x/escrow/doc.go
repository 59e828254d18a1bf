/*
Package escrow implements a hash preimage escrow.

An initializer locks lamports in an escrow account together with the hex
text of a SHA-256 digest. Anyone knowing a preimage of that digest can claim
the funds for a receiver of their choice.

The digest of the preimage is not computed by the program. Claim delegates
the computation to the oracle and records the oracle execution in a tracker
account. When the execution is fulfilled the oracle calls VerifyAndRelease,
which authenticates the callback, compares the committed output with the
stored digest and, on an exact match, releases the funds. An escrow is
released at most once; every later callback fails with ErrAlreadyClaimed.

Both escrow and tracker accounts are program derived. The escrow address is
derived from the seed it was created with, the tracker address from the
execution id of the claim. Accounts whose address does not match the
derivation are rejected.
*/
package escrow

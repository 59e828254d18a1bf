/*
Package oracle implements a verifiable computation oracle that programs can
delegate work to.

A requesting program submits an ExecuteV1 instruction naming a deployed
image, the inputs and a callback. The oracle records the execution as
pending in an account derived from the requester and the execution id and
holds the tip offered for the work.

Executions are resolved off ledger. The Relay scans pending executions,
computes the committed output with a Prover registered for the image and
submits a Fulfill instruction. Fulfill pays the tip to the prover and, if
the execution did not expire, invokes the callback program. The execution
account signs the callback, so a program can trust a callback by checking
that signature with HandleCallback.

This package does not verify proofs. A prover is trusted to run the image.
*/
package oracle

/*
Package system implements the system program. It creates accounts, assigns
them to programs and transfers lamports between accounts it owns.

Every account that holds no data is owned by the system program, so a
wallet is simply a system owned account.

Instruction data starts with a little endian uint32 tag followed by fixed
size little endian fields.
*/
package system
